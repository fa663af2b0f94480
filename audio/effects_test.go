package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/stretchr/testify/assert"
)

const testRate = beep.SampleRate(1000)

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 64)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n == 0 {
			return out
		}
	}
}

func TestOscillator_Length(t *testing.T) {
	samples := drain(NewOscillator(100, 250*time.Millisecond, Sine, testRate))
	assert.Len(t, samples, 250)
	for _, s := range samples {
		assert.LessOrEqual(t, math.Abs(s[0]), 1.0)
		assert.Equal(t, s[0], s[1])
	}
}

func TestEnvelope_StartsAndEndsQuiet(t *testing.T) {
	osc := NewOscillator(0, 100*time.Millisecond, Square, testRate)
	samples := drain(NewEnvelope(osc, 100*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond, testRate))
	assert.Len(t, samples, 100)

	assert.Equal(t, 0.0, samples[0][0], "attack starts from silence")
	assert.Equal(t, 1.0, samples[50][0], "sustain is full scale")
	assert.InDelta(t, 0.05, samples[99][0], 1e-9, "release ramps down")
}

func TestEnvelope_ShortToneSplitsRamps(t *testing.T) {
	osc := NewOscillator(0, 10*time.Millisecond, Square, testRate)
	samples := drain(NewEnvelope(osc, 10*time.Millisecond, 20*time.Millisecond, 20*time.Millisecond, testRate))
	assert.Len(t, samples, 10)
	assert.Equal(t, 0.0, samples[0][0])
	assert.Greater(t, samples[5][0], 0.0)
}

func TestSinks(t *testing.T) {
	var nop Sink = NopSink{}
	nop.Play(440, time.Second)
	nop.Close()

	rec := &RecordingSink{}
	rec.Play(440, 100*time.Millisecond)
	rec.Play(220, 50*time.Millisecond)
	assert.Equal(t, []Tone{{440, 100 * time.Millisecond}, {220, 50 * time.Millisecond}}, rec.Tones())

	// Uninitialized beep sink drops tones without touching the speaker
	b := NewBeepSink(Config{})
	b.Play(440, time.Second)
	b.Close()
}

func TestCreateTone_ScalesVolume(t *testing.T) {
	full := drain(NewEnvelope(NewOscillator(0, 50*time.Millisecond, Square, testRate), 50*time.Millisecond, 0, 0, testRate))
	half := drain(&effects.Gain{Streamer: NewOscillator(0, 50*time.Millisecond, Square, testRate), Gain: -0.5})
	assert.Len(t, half, len(full))
	assert.InDelta(t, 0.5, half[10][0], 1e-9)

	tone := drain(CreateTone(440, 100*time.Millisecond, 0, testRate, 0, 0))
	assert.Len(t, tone, 100)
	for _, s := range tone {
		assert.Zero(t, s[0], "zero volume is silent")
	}
}

func TestWaveforms(t *testing.T) {
	assert.InDelta(t, 1.0, Sine(0.25), 1e-9)
	assert.Equal(t, -1.0, Square(0.75))
	assert.Equal(t, -1.0, Saw(0))
	assert.Equal(t, 0.0, Saw(0.5))
}
