package infra

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RelayBreaker stops the email worker from hammering an SMTP relay that is
// down. After MaxFailures consecutive failures it rejects calls for Cooldown,
// then lets calls through as probes; ProbeSuccesses consecutive probe
// successes make the relay healthy again and any probe failure trips it anew.
type RelayBreaker struct {
	mu        sync.Mutex
	cfg       RelayBreakerConfig
	state     RelayState
	streak    int // failures while healthy, successes while probing
	trippedAt time.Time
	now       func() time.Time
}

// RelayState is where a RelayBreaker stands toward its relay.
type RelayState int

const (
	RelayHealthy RelayState = iota
	RelayTripped
	RelayProbing
)

func (s RelayState) String() string {
	switch s {
	case RelayHealthy:
		return "healthy"
	case RelayTripped:
		return "tripped"
	case RelayProbing:
		return "probing"
	}
	return "unknown"
}

// ErrRelayTripped is returned by Do while the breaker rejects calls.
var ErrRelayTripped = errors.New("relay breaker tripped")

type RelayBreakerConfig struct {
	Name           string
	MaxFailures    int
	ProbeSuccesses int
	Cooldown       time.Duration
}

// SMTPBreakerConfig is what the alert mail relay runs with.
func SMTPBreakerConfig() RelayBreakerConfig {
	return RelayBreakerConfig{Name: "smtp", MaxFailures: 5, ProbeSuccesses: 2, Cooldown: time.Minute}
}

func NewRelayBreaker(cfg RelayBreakerConfig) *RelayBreaker {
	def := SMTPBreakerConfig()
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.ProbeSuccesses <= 0 {
		cfg.ProbeSuccesses = def.ProbeSuccesses
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	return &RelayBreaker{cfg: cfg, now: time.Now}
}

func (b *RelayBreaker) State() RelayState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

// Do runs fn unless the breaker is tripped, and records the outcome.
func (b *RelayBreaker) Do(fn func() error) error {
	b.mu.Lock()
	b.refresh()
	if b.state == RelayTripped {
		wait := b.cfg.Cooldown - b.now().Sub(b.trippedAt)
		b.mu.Unlock()
		return fmt.Errorf("%w: %s, retry in %s", ErrRelayTripped, b.cfg.Name, wait.Round(time.Second))
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(err == nil)
	return err
}

func (b *RelayBreaker) refresh() {
	if b.state == RelayTripped && b.now().Sub(b.trippedAt) >= b.cfg.Cooldown {
		b.set(RelayProbing)
	}
}

func (b *RelayBreaker) record(ok bool) {
	switch b.state {
	case RelayHealthy:
		if ok {
			b.streak = 0
			return
		}
		b.streak++
		if b.streak >= b.cfg.MaxFailures {
			b.trip()
		}
	case RelayProbing:
		if !ok {
			b.trip()
			return
		}
		b.streak++
		if b.streak >= b.cfg.ProbeSuccesses {
			b.set(RelayHealthy)
		}
	case RelayTripped:
		// a call that started before the trip finished late
		if !ok {
			b.trippedAt = b.now()
		}
	}
}

func (b *RelayBreaker) trip() {
	b.trippedAt = b.now()
	b.set(RelayTripped)
}

func (b *RelayBreaker) set(to RelayState) {
	if b.state == to {
		return
	}
	log.Warn().
		Str("relay", b.cfg.Name).
		Stringer("from", b.state).
		Stringer("to", to).
		Msg("relay breaker state change")
	b.state = to
	b.streak = 0
}
