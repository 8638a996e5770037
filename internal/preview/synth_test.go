package preview_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"tonehub/internal/preview"
)

func peak(samples []float64) float64 {
	p := 0.0
	for _, s := range samples {
		p = math.Max(p, math.Abs(s))
	}
	return p
}

func TestBurstEnvelope(t *testing.T) {
	cfg := preview.DefaultSynthConfig()
	burst, err := preview.Burst(48000, cfg)
	if err != nil {
		t.Fatalf("Burst: %v", err)
	}
	if len(burst) != 24000 {
		t.Fatalf("expected 500ms at 48kHz, got %d samples", len(burst))
	}
	if burst[0] != 0 {
		t.Fatalf("expected silent first sample, got %f", burst[0])
	}
	head := peak(burst[:len(burst)/4])
	tail := peak(burst[len(burst)*3/4:])
	if tail >= head/4 {
		t.Fatalf("expected decaying envelope, head=%f tail=%f", head, tail)
	}
}

func TestRenderNormalizesAndCapsTail(t *testing.T) {
	cfg := preview.SynthConfig{
		BurstHz:    110,
		Burst:      100 * time.Millisecond,
		Attack:     5 * time.Millisecond,
		MaxTail:    20 * time.Millisecond,
		LowpassHz:  5000,
		OutputPeak: 0.8,
	}
	ir := decayingIR(4800)
	out, err := preview.Render(ir, 48000, cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := 4800 + 960; len(out) != want {
		t.Fatalf("expected burst plus capped tail (%d), got %d", want, len(out))
	}
	if p := peak(out); math.Abs(p-0.8) > 1e-9 {
		t.Fatalf("expected peak 0.8, got %f", p)
	}
	if out[len(out)-1] != 0 {
		t.Fatalf("expected faded final sample, got %f", out[len(out)-1])
	}
	if d := preview.PlaybackDuration(len(out), 48000); d != 120*time.Millisecond {
		t.Fatalf("unexpected duration %s", d)
	}
}

func TestRenderRejectsEmptyIR(t *testing.T) {
	if _, err := preview.Render(nil, 48000, preview.DefaultSynthConfig()); !errors.Is(err, preview.ErrEmptyIR) {
		t.Fatalf("expected ErrEmptyIR, got %v", err)
	}
}

func TestWAVDecoder(t *testing.T) {
	ir := decayingIR(441)
	data := wavBytes(ir, 44100)

	same, err := preview.WAVDecoder{}.Decode(data, 44100)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(same) != len(ir) {
		t.Fatalf("expected %d samples, got %d", len(ir), len(same))
	}
	if math.Abs(same[0]-ir[0]) > 1e-3 {
		t.Fatalf("first sample mismatch: got %f want %f", same[0], ir[0])
	}

	resampled, err := preview.WAVDecoder{}.Decode(data, 48000)
	if err != nil {
		t.Fatalf("Decode resampled: %v", err)
	}
	if len(resampled) < 440 || len(resampled) > 500 {
		t.Fatalf("expected about 480 samples after resampling, got %d", len(resampled))
	}

	capped, err := preview.WAVDecoder{MaxSamples: 100}.Decode(data, 44100)
	if err != nil || len(capped) != 100 {
		t.Fatalf("expected capped decode, got %d err=%v", len(capped), err)
	}
}

func TestWAVDecoderRejectsNonRIFF(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("RIFF"), []byte("<html><body>nope</body></html>")} {
		if _, err := (preview.WAVDecoder{}).Decode(data, 48000); !errors.Is(err, preview.ErrNotWAV) {
			t.Fatalf("expected ErrNotWAV for %q, got %v", data, err)
		}
	}
}
