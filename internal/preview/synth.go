package preview

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/conv"
	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"
	"github.com/cwbudde/algo-dsp/dsp/signal"

	"tonehub/internal/config"
)

// SynthConfig shapes the excitation burst.
type SynthConfig struct {
	BurstHz    float64
	Burst      time.Duration
	Attack     time.Duration
	MaxTail    time.Duration
	LowpassHz  float64
	OutputPeak float64
}

// SynthConfigFromConfig adapts the [preview] configuration section.
func SynthConfigFromConfig(cfg config.Preview) SynthConfig {
	return SynthConfig{
		BurstHz:    cfg.BurstHz,
		Burst:      time.Duration(cfg.BurstMillis) * time.Millisecond,
		Attack:     time.Duration(cfg.AttackMillis) * time.Millisecond,
		MaxTail:    time.Duration(cfg.MaxTailMillis) * time.Millisecond,
		LowpassHz:  cfg.LowpassHz,
		OutputPeak: cfg.OutputPeak,
	}
}

// DefaultSynthConfig mirrors the configuration defaults.
func DefaultSynthConfig() SynthConfig {
	return SynthConfigFromConfig(config.Default().Preview)
}

const (
	// decayTimeConstants sets how many time constants fit in the burst.
	decayTimeConstants = 5
	fadeOut            = 5 * time.Millisecond
	lowpassOrder       = 2
)

// Burst synthesizes the excitation: a low sine with a fast attack and an
// exponential decay, band-limited by a Butterworth low-pass.
func Burst(sampleRate int, cfg SynthConfig) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, ErrBadRate
	}
	n := samplesFor(sampleRate, cfg.Burst)
	if n <= 0 {
		return nil, errors.New("burst duration must be positive")
	}

	gen := signal.NewGenerator(core.WithSampleRate(float64(sampleRate)))
	burst, err := gen.Sine(cfg.BurstHz, 1, n)
	if err != nil {
		return nil, fmt.Errorf("generate burst: %w", err)
	}

	attack := min(samplesFor(sampleRate, cfg.Attack), n)
	tau := float64(n-attack) / decayTimeConstants
	for i := range burst {
		var env float64
		switch {
		case i < attack:
			env = float64(i) / float64(attack)
		case tau > 0:
			env = math.Exp(-float64(i-attack) / tau)
		}
		burst[i] *= env
	}

	nyquist := float64(sampleRate) / 2
	if cfg.LowpassHz > 0 && cfg.LowpassHz < nyquist {
		chain := biquad.NewChain(pass.ButterworthLP(cfg.LowpassHz, lowpassOrder, float64(sampleRate)))
		chain.ProcessBlock(burst)
	}
	return burst, nil
}

// Render convolves the burst with ir, trims the tail and normalizes the
// peak. The result is what the engine plays.
func Render(ir []float64, sampleRate int, cfg SynthConfig) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}
	burst, err := Burst(sampleRate, cfg)
	if err != nil {
		return nil, err
	}

	wet, err := conv.Convolve(burst, ir)
	if err != nil {
		return nil, fmt.Errorf("convolve: %w", err)
	}

	limit := len(burst) + min(len(ir), samplesFor(sampleRate, cfg.MaxTail))
	if len(wet) > limit {
		wet = wet[:limit]
	}
	applyFadeOut(wet, samplesFor(sampleRate, fadeOut))

	out, err := signal.Normalize(wet, cfg.OutputPeak)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return out, nil
}

// PlaybackDuration is the length of samples at sampleRate.
func PlaybackDuration(samples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

func samplesFor(sampleRate int, d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(int64(sampleRate) * int64(d) / int64(time.Second))
}

func applyFadeOut(buf []float64, n int) {
	n = min(n, len(buf))
	start := len(buf) - n
	for i := 0; i < n; i++ {
		buf[start+i] *= float64(n-1-i) / float64(n)
	}
}
