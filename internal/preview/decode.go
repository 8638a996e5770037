package preview

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// Decoder turns fetched bytes into mono samples at sampleRate.
type Decoder interface {
	Decode(data []byte, sampleRate int) ([]float64, error)
}

// Errors returned by WAVDecoder.
var (
	ErrNotWAV   = errors.New("not a RIFF/WAVE file")
	ErrEmptyIR  = errors.New("impulse response has no samples")
	ErrBadRate  = errors.New("invalid sample rate")
	errTruncHdr = errors.New("truncated header")
)

// WAVDecoder decodes RIFF/WAVE data with beep, mixes it down to mono and
// resamples it to the target rate.
type WAVDecoder struct {
	// ResampleQuality is passed to beep.Resample; zero uses 4.
	ResampleQuality int
	// MaxSamples bounds the decoded length at the target rate; zero is unbounded.
	MaxSamples int
}

func (d WAVDecoder) Decode(data []byte, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, ErrBadRate
	}
	if err := checkRIFF(data); err != nil {
		return nil, err
	}

	stream, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("wav decode: %w", err)
	}
	defer stream.Close()
	if format.SampleRate <= 0 {
		return nil, ErrBadRate
	}

	var source beep.Streamer = stream
	target := beep.SampleRate(sampleRate)
	if format.SampleRate != target {
		quality := d.ResampleQuality
		if quality <= 0 {
			quality = 4
		}
		source = beep.Resample(quality, format.SampleRate, target, stream)
	}

	out, err := drainMono(source, d.MaxSamples)
	if err != nil {
		return nil, err
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("wav stream: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrEmptyIR
	}
	return out, nil
}

func drainMono(s beep.Streamer, limit int) ([]float64, error) {
	buf := make([][2]float64, 1024)
	var out []float64
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, (frame[0]+frame[1])/2)
		}
		if limit > 0 && len(out) >= limit {
			return out[:limit], nil
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}
	return out, nil
}

// checkRIFF validates the 12-byte container header before handing the data
// to the decoder, so HTML error pages and truncated downloads fail clearly.
func checkRIFF(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("%w: %w", ErrNotWAV, errTruncHdr)
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return ErrNotWAV
	}
	return nil
}
