package audio

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"glitchfx/internal/logger"
	"glitchfx/pkg/config"
)

const (
	sampleRate      = 44100
	framesPerBuffer = 1024
	numChannels     = 2
)

// Player streams Static to the default output device. Levels are written
// by the render task and read by the PortAudio callback thread.
type Player struct {
	stream    *portaudio.Stream
	static    *Static
	strength  atomic.Uint64 // math.Float64bits
	escalated atomic.Bool
	log       *logger.Logger
}

// NewPlayer initialises PortAudio and starts the output stream
func NewPlayer(cfg config.AudioConfig, log *logger.Logger) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	p := &Player{
		static: NewStatic(sampleRate, numChannels, cfg.Volume, time.Now().UnixNano()),
		log:    log,
	}

	stream, err := portaudio.OpenDefaultStream(0, numChannels, sampleRate, framesPerBuffer, p.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}
	p.stream = stream

	log.Infof("audio stream started (%d Hz, %d channels)", sampleRate, numChannels)
	return p, nil
}

// SetLevel updates the burst strength and escalation flag
func (p *Player) SetLevel(strength float64, escalated bool) {
	p.strength.Store(math.Float64bits(strength))
	p.escalated.Store(escalated)
}

func (p *Player) callback(out []float32) {
	strength := math.Float64frombits(p.strength.Load())
	p.static.Fill(out, strength, p.escalated.Load())
}

// Close stops the stream and releases PortAudio
func (p *Player) Close() error {
	var firstErr error
	if err := p.stream.Stop(); err != nil {
		firstErr = fmt.Errorf("failed to stop audio stream: %w", err)
	}
	if err := p.stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close audio stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	p.log.Info("audio stream closed")
	return firstErr
}
