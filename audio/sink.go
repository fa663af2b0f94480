package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/spritestage/parameter"
)

// Sink receives tone requests from the engine
// Play must not block the frame loop
type Sink interface {
	Play(freq float64, d time.Duration)
	Close()
}

// NopSink discards every tone
type NopSink struct{}

func (NopSink) Play(float64, time.Duration) {}
func (NopSink) Close()                      {}

// Config configures a BeepSink
type Config struct {
	SampleRate int
	Volume     float64 // Linear, 0..1
}

// DefaultConfig returns a sink config at the default sample rate and half volume
func DefaultConfig() Config {
	return Config{SampleRate: parameter.DefaultSampleRate, Volume: 0.5}
}

// BeepSink plays tones through a beep mixer on the system speaker
type BeepSink struct {
	mu          sync.Mutex
	cfg         Config
	rate        beep.SampleRate
	mixer       *beep.Mixer
	initialized bool
}

// NewBeepSink creates an uninitialized sink; call Initialize before Play has any effect
func NewBeepSink(cfg Config) *BeepSink {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = parameter.DefaultSampleRate
	}
	return &BeepSink{
		cfg:   cfg,
		rate:  beep.SampleRate(cfg.SampleRate),
		mixer: &beep.Mixer{},
	}
}

// Initialize sets up the speaker and starts the mixer
func (s *BeepSink) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(s.rate, s.rate.N(time.Millisecond*100)); err != nil {
		return errors.Join(errors.New("audio: speaker init failed"), err)
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Play mixes a tone in; it starts immediately and overlaps earlier tones
func (s *BeepSink) Play(freq float64, d time.Duration) {
	if freq <= 0 || d <= 0 {
		return
	}
	if d > parameter.MaxToneDuration {
		d = parameter.MaxToneDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}

	tone := CreateTone(freq, d, s.cfg.Volume, s.rate, parameter.ToneAttack, parameter.ToneRelease)
	speaker.Lock()
	s.mixer.Add(tone)
	speaker.Unlock()
}

// Close silences all tones; the speaker itself stays open
func (s *BeepSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// Tone is a captured tone request
type Tone struct {
	Freq     float64
	Duration time.Duration
}

// RecordingSink keeps every tone it is asked to play
type RecordingSink struct {
	mu    sync.Mutex
	tones []Tone
}

func (r *RecordingSink) Play(freq float64, d time.Duration) {
	r.mu.Lock()
	r.tones = append(r.tones, Tone{Freq: freq, Duration: d})
	r.mu.Unlock()
}

func (r *RecordingSink) Close() {}

// Tones returns a copy of the captured requests
func (r *RecordingSink) Tones() []Tone {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Tone(nil), r.tones...)
}
