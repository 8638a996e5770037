package preview

import (
	"errors"
	"sync"
)

// Context is the single audio-processing context the engine plays through.
type Context interface {
	SampleRate() int
	// Play starts mono samples in [-1, 1]. done is called once when the
	// voice runs out; it must not be called after Stop.
	Play(samples []float64, done func()) (Voice, error)
	Close() error
}

// Voice is one playing buffer.
type Voice interface {
	// Stop silences and disconnects the voice. Safe to call more than once.
	Stop()
}

// ContextFactory opens the audio context. It is called once by New.
type ContextFactory func() (Context, error)

// NullContext accepts voices and discards their samples. Voices never
// finish on their own; the engine's duration timer ends them.
type NullContext struct {
	Rate int
}

func (c NullContext) SampleRate() int {
	if c.Rate <= 0 {
		return 48000
	}
	return c.Rate
}

func (NullContext) Play(samples []float64, _ func()) (Voice, error) {
	if len(samples) == 0 {
		return nil, errors.New("empty buffer")
	}
	return nullVoice{}, nil
}

func (NullContext) Close() error { return nil }

type nullVoice struct{}

func (nullVoice) Stop() {}

// NullFactory returns a ContextFactory producing a NullContext at rate.
func NullFactory(rate int) ContextFactory {
	return func() (Context, error) { return NullContext{Rate: rate}, nil }
}

// onceVoice guards a Voice so Stop reaches the underlying voice once.
type onceVoice struct {
	once  sync.Once
	voice Voice
}

func (v *onceVoice) Stop() {
	if v == nil || v.voice == nil {
		return
	}
	v.once.Do(v.voice.Stop)
}
