// Package speaker plays preview buffers through the system audio device
// using beep's speaker. The device is initialized at most once per process.
package speaker

import (
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	beepspeaker "github.com/gopxl/beep/v2/speaker"

	"tonehub/internal/preview"
)

// bufferDuration trades latency against underruns.
const bufferDuration = 50 * time.Millisecond

var (
	initOnce sync.Once
	initErr  error
	initRate int
)

// Context is a preview.Context backed by the speaker.
type Context struct {
	rate beep.SampleRate

	mu     sync.Mutex
	closed bool
}

// Open initializes the speaker at sampleRate. Later calls reuse the first
// initialization and fail if they ask for a different rate.
func Open(sampleRate int) (*Context, error) {
	if sampleRate <= 0 {
		return nil, errors.New("speaker: sample rate must be positive")
	}
	initOnce.Do(func() {
		rate := beep.SampleRate(sampleRate)
		initErr = beepspeaker.Init(rate, rate.N(bufferDuration))
		initRate = sampleRate
	})
	if initErr != nil {
		return nil, initErr
	}
	if initRate != sampleRate {
		return nil, errors.New("speaker: already initialized at a different sample rate")
	}
	return &Context{rate: beep.SampleRate(sampleRate)}, nil
}

// Factory adapts Open to preview.ContextFactory.
func Factory(sampleRate int) preview.ContextFactory {
	return func() (preview.Context, error) { return Open(sampleRate) }
}

func (c *Context) SampleRate() int { return int(c.rate) }

// Play queues samples as a mono stream. done runs on the speaker goroutine
// when the stream drains, unless the voice was stopped first.
func (c *Context) Play(samples []float64, done func()) (preview.Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("speaker: context closed")
	}
	if len(samples) == 0 {
		return nil, errors.New("speaker: empty buffer")
	}

	v := &voice{ctrl: &beep.Ctrl{Streamer: &monoStreamer{samples: samples}}}
	tail := beep.Callback(func() {
		if v.stopped {
			return
		}
		v.stopped = true
		if done != nil {
			done()
		}
	})
	beepspeaker.Play(beep.Seq(v.ctrl, tail))
	return v, nil
}

// Close silences all streams. The device itself stays open for the life of
// the process because beep cannot reinitialize it.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	beepspeaker.Clear()
	return nil
}

// voice fields are guarded by the speaker lock.
type voice struct {
	ctrl    *beep.Ctrl
	stopped bool
}

func (v *voice) Stop() {
	beepspeaker.Lock()
	defer beepspeaker.Unlock()
	v.stopped = true
	v.ctrl.Streamer = nil
}

type monoStreamer struct {
	samples []float64
	pos     int
}

func (m *monoStreamer) Stream(out [][2]float64) (int, bool) {
	if m.pos >= len(m.samples) {
		return 0, false
	}
	n := copyFrames(out, m.samples[m.pos:])
	m.pos += n
	return n, true
}

func (m *monoStreamer) Err() error { return nil }

func copyFrames(out [][2]float64, src []float64) int {
	n := min(len(out), len(src))
	for i := 0; i < n; i++ {
		out[i][0] = src[i]
		out[i][1] = src[i]
	}
	return n
}
