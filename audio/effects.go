package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Waveform maps a cycle phase in [0, 1) to an amplitude in [-1, 1]
type Waveform func(phase float64) float64

// Sine is the waveform of the tone primitive
func Sine(phase float64) float64 { return math.Sin(2 * math.Pi * phase) }

// Square holds +1 for the first half cycle
func Square(phase float64) float64 {
	if phase < 0.5 {
		return 1
	}
	return -1
}

// Saw ramps from -1 to +1 over one cycle
func Saw(phase float64) float64 { return 2*phase - 1 }

// oscillator emits a fixed number of mono samples duplicated to both channels
type oscillator struct {
	wave  Waveform
	step  float64 // Phase advance per sample
	phase float64
	left  int // Samples still to emit
}

// NewOscillator streams wave at freq for d
func NewOscillator(freq float64, d time.Duration, wave Waveform, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		wave: wave,
		step: freq / float64(rate),
		left: rate.N(d),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	if o.left <= 0 {
		return 0, false
	}
	n := min(len(samples), o.left)
	for i := range n {
		v := o.wave(o.phase)
		samples[i] = [2]float64{v, v}
		_, o.phase = math.Modf(o.phase + o.step)
	}
	o.left -= n
	return n, true
}

func (o *oscillator) Err() error { return nil }

// envelope scales a stream by a linear attack, flat sustain and linear release
type envelope struct {
	src     beep.Streamer
	pos     int
	total   int
	attack  int
	release int
}

// NewEnvelope shapes s over d; ramps longer than the tone share its length evenly
func NewEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	env := &envelope{
		src:     s,
		total:   rate.N(d),
		attack:  rate.N(attack),
		release: rate.N(release),
	}
	if env.attack+env.release > env.total {
		env.attack = env.total / 2
		env.release = env.total - env.attack
	}
	return env
}

// gain returns the envelope level at sample pos
func (e *envelope) gain(pos int) float64 {
	switch {
	case e.attack > 0 && pos < e.attack:
		return float64(pos) / float64(e.attack)
	case e.release > 0 && pos >= e.total-e.release:
		return max(float64(e.total-pos)/float64(e.release), 0)
	default:
		return 1
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	if remaining := e.total - e.pos; remaining <= 0 {
		return 0, false
	} else if len(samples) > remaining {
		samples = samples[:remaining]
	}
	n, ok := e.src.Stream(samples)
	for i := range n {
		g := e.gain(e.pos)
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.src.Err() }

// CreateTone builds the streamer for one tone primitive call at a linear volume in [0, 1]
func CreateTone(freq float64, d time.Duration, volume float64, rate beep.SampleRate, attack, release time.Duration) beep.Streamer {
	shaped := NewEnvelope(NewOscillator(freq, d, Sine, rate), d, attack, release, rate)
	return &effects.Gain{Streamer: shaped, Gain: max(volume, 0) - 1}
}
