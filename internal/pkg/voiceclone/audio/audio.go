// Package audio holds the in-memory sample buffer and the small set of
// transforms the voice-preparation pipeline needs: downmix, resample,
// normalize, silence trim and concatenation.
package audio

import (
	"math"
	"time"
)

const (
	// SampleRate is the conditioning rate expected by the synthesis model.
	SampleRate    = 22050
	NumChannels   = 1
	BitsPerSample = 16
)

// Audio is a mono buffer of float32 samples in [-1, 1].
type Audio struct {
	Samples    []float32
	SampleRate int
}

func New(samples []float32, sampleRate int) *Audio {
	return &Audio{
		Samples:    samples,
		SampleRate: sampleRate,
	}
}

// Silence returns a buffer of d worth of zero samples.
func Silence(d time.Duration, sampleRate int) *Audio {
	n := int(float64(sampleRate) * d.Seconds())
	return &Audio{
		Samples:    make([]float32, n),
		SampleRate: sampleRate,
	}
}

func (a *Audio) Duration() float64 {
	if a.SampleRate == 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Peak returns the largest absolute sample value.
func (a *Audio) Peak() float32 {
	var peak float32
	for _, s := range a.Samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Resample converts the buffer to the target rate using linear
// interpolation. Returns the receiver unchanged if the rate already matches.
func (a *Audio) Resample(rate int) *Audio {
	if rate == a.SampleRate || len(a.Samples) == 0 {
		return &Audio{Samples: append([]float32(nil), a.Samples...), SampleRate: rate}
	}

	ratio := float64(a.SampleRate) / float64(rate)
	n := int(math.Ceil(float64(len(a.Samples)) / ratio))
	out := make([]float32, n)

	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(a.Samples)-1 {
			out[i] = a.Samples[len(a.Samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = a.Samples[idx]*(1-frac) + a.Samples[idx+1]*frac
	}

	return &Audio{Samples: out, SampleRate: rate}
}

// normalizeHeadroom leaves ~0.1 dB below full scale after peak normalization.
const normalizeHeadroom = 0.9886

// Normalize scales the buffer so its peak sits just under full scale.
// A silent buffer is returned unchanged.
func (a *Audio) Normalize() *Audio {
	peak := a.Peak()
	out := &Audio{Samples: append([]float32(nil), a.Samples...), SampleRate: a.SampleRate}
	if peak == 0 {
		return out
	}
	gain := float32(normalizeHeadroom) / peak
	for i := range out.Samples {
		out.Samples[i] *= gain
	}
	return out
}

// TrimSilence removes leading and trailing silence. A region counts as
// silence when every sample stays below thresholdDB (dBFS) and the region is
// at least minSilence long; shorter quiet edges are kept. If the whole
// buffer is below the threshold the receiver is returned unchanged so the
// caller can decide how to report it.
func (a *Audio) TrimSilence(thresholdDB float64, minSilence time.Duration) *Audio {
	thresh := float32(math.Pow(10, thresholdDB/20))
	minRun := int(float64(a.SampleRate) * minSilence.Seconds())

	first, last := -1, -1
	for i, s := range a.Samples {
		if s < 0 {
			s = -s
		}
		if s >= thresh {
			if first == -1 {
				first = i
			}
			last = i
		}
	}

	if first == -1 {
		return &Audio{Samples: append([]float32(nil), a.Samples...), SampleRate: a.SampleRate}
	}

	start, end := 0, len(a.Samples)
	if first >= minRun {
		start = first
	}
	if len(a.Samples)-1-last >= minRun {
		end = last + 1
	}

	return &Audio{
		Samples:    append([]float32(nil), a.Samples[start:end]...),
		SampleRate: a.SampleRate,
	}
}

// Concat joins segments with a fixed gap of silence between them. There is
// no gap after the final segment. Segments are resampled to sampleRate
// before joining.
func Concat(segments []*Audio, gap time.Duration, sampleRate int) *Audio {
	gapSamples := int(float64(sampleRate) * gap.Seconds())

	total := 0
	resampled := make([]*Audio, 0, len(segments))
	for _, seg := range segments {
		r := seg.Resample(sampleRate)
		resampled = append(resampled, r)
		total += len(r.Samples)
	}
	if len(resampled) > 1 {
		total += gapSamples * (len(resampled) - 1)
	}

	out := make([]float32, 0, total)
	for i, seg := range resampled {
		if i > 0 {
			out = append(out, make([]float32, gapSamples)...)
		}
		out = append(out, seg.Samples...)
	}

	return &Audio{Samples: out, SampleRate: sampleRate}
}
