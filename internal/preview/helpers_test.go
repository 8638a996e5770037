package preview_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tonehub/internal/catalog"
	"tonehub/internal/preview"
)

// wavBytes encodes mono 16-bit PCM.
func wavBytes(samples []float64, rate int) []byte {
	var pcm bytes.Buffer
	for _, s := range samples {
		_ = binary.Write(&pcm, binary.LittleEndian, int16(math.Round(s*32767)))
	}
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+pcm.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(pcm.Len()))
	buf.Write(pcm.Bytes())
	return buf.Bytes()
}

// decayingIR is a short synthetic impulse response.
func decayingIR(n int) []float64 {
	ir := make([]float64, n)
	for i := range ir {
		ir[i] = 0.9 * math.Exp(-float64(i)/float64(n/6+1))
		if i%2 == 1 {
			ir[i] = -ir[i]
		}
	}
	return ir
}

type fakeVoice struct {
	mu      sync.Mutex
	samples int
	stopped bool
}

func (v *fakeVoice) Stop() {
	v.mu.Lock()
	v.stopped = true
	v.mu.Unlock()
}

func (v *fakeVoice) isStopped() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stopped
}

type fakeContext struct {
	rate int

	mu     sync.Mutex
	voices []*fakeVoice
	closes int
	fail   error
}

func (c *fakeContext) SampleRate() int { return c.rate }

func (c *fakeContext) Play(samples []float64, _ func()) (preview.Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	v := &fakeVoice{samples: len(samples)}
	c.voices = append(c.voices, v)
	return v, nil
}

func (c *fakeContext) Close() error {
	c.mu.Lock()
	c.closes++
	c.mu.Unlock()
	return nil
}

func (c *fakeContext) snapshot() []*fakeVoice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeVoice(nil), c.voices...)
}

func (c *fakeContext) active() int {
	n := 0
	for _, v := range c.snapshot() {
		if !v.isStopped() {
			n++
		}
	}
	return n
}

// irServer serves a valid IR at /a.wav and /b.wav, HTML at /page.wav, 404
// elsewhere, and holds /slow.wav until release is closed.
type irServer struct {
	*httptest.Server
	release chan struct{}
}

func newIRServer(t *testing.T, rate int) *irServer {
	t.Helper()
	body := wavBytes(decayingIR(64), rate)
	s := &irServer{release: make(chan struct{})}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.wav", "/b.wav":
			_, _ = w.Write(body)
		case "/slow.wav":
			select {
			case <-s.release:
			case <-r.Context().Done():
				return
			}
			_, _ = w.Write(body)
		case "/page.wav":
			_, _ = w.Write([]byte("<html>not found</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(func() {
		select {
		case <-s.release:
		default:
			close(s.release)
		}
		s.Close()
	})
	return s
}

func irItem(id, name, url string) catalog.Item {
	return catalog.Item{ID: id, Name: name, Brand: "Test", Type: catalog.TypeIR, Location: catalog.ParseLocation(url)}
}

func testSynth() preview.SynthConfig {
	return preview.SynthConfig{
		BurstHz:    110,
		Burst:      30 * time.Millisecond,
		Attack:     2 * time.Millisecond,
		MaxTail:    10 * time.Millisecond,
		LowpassHz:  3000,
		OutputPeak: 0.8,
	}
}

func newEngine(t *testing.T, audio *fakeContext) *preview.Engine {
	t.Helper()
	engine := preview.New(preview.Options{
		Factory: func() (preview.Context, error) { return audio, nil },
		Fetcher: &preview.HTTPFetcher{},
		Decoder: preview.WAVDecoder{},
		Synth:   testSynth(),
	})
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

type recorder struct {
	ch chan preview.Event
}

func record(engine *preview.Engine) *recorder {
	r := &recorder{ch: make(chan preview.Event, 64)}
	engine.Subscribe(func(ev preview.Event) { r.ch <- ev })
	return r
}

func (r *recorder) waitFor(t *testing.T, what string, match func(preview.Event) bool) preview.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-r.ch:
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func phaseFor(itemID string, phase preview.Phase) func(preview.Event) bool {
	return func(ev preview.Event) bool {
		return ev.Kind == preview.EventPhase && ev.Session.ItemID == itemID && ev.Phase == phase
	}
}

func errorFor(itemID string) func(preview.Event) bool {
	return func(ev preview.Event) bool {
		return ev.Kind == preview.EventError && ev.Session.ItemID == itemID
	}
}

var errAudioBusy = errors.New("device busy")
