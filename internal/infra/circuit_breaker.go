package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EstadoBreaker is reported by /health as closed, open or half-open.
type EstadoBreaker int

const (
	BreakerCerrado EstadoBreaker = iota
	BreakerAbierto
	BreakerSemiAbierto
)

func (e EstadoBreaker) String() string {
	switch e {
	case BreakerCerrado:
		return "closed"
	case BreakerAbierto:
		return "open"
	case BreakerSemiAbierto:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerAbierto is returned without calling the dependency.
var ErrBreakerAbierto = errors.New("breaker abierto")

type BreakerConfig struct {
	Nombre string
	// Fallos is the run of consecutive failures that opens the breaker.
	Fallos int
	// Exitos is the number of successful trial calls that close it again.
	Exitos int
	// Espera is how long it stays open before letting a trial call through.
	Espera time.Duration
}

// KafkaBreakerConfig is what the event publisher runs with.
func KafkaBreakerConfig() BreakerConfig {
	return BreakerConfig{Nombre: "kafka", Fallos: 5, Exitos: 2, Espera: 30 * time.Second}
}

// Breaker fails fast while the brokers are down so event workers push their
// jobs back to the retry set instead of each waiting on a write timeout.
// Half-open admits one trial call at a time.
type Breaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	estado    EstadoBreaker
	fallos    int
	exitos    int
	abiertoEn time.Time
	sondeando bool
	now       func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Fallos <= 0 {
		cfg.Fallos = 5
	}
	if cfg.Exitos <= 0 {
		cfg.Exitos = 2
	}
	if cfg.Espera <= 0 {
		cfg.Espera = 30 * time.Second
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

func (b *Breaker) Estado() EstadoBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.estadoActual()
}

// Do runs fn unless the breaker rejects it. A failure caused by ctx ending
// is the caller giving up and does not count against the dependency.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	sonda, err := b.admitir()
	if err != nil {
		return err
	}
	err = fn(ctx)
	b.registrar(sonda, err != nil && ctx.Err() == nil, err == nil)
	return err
}

func (b *Breaker) admitir() (sonda bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.estadoActual() {
	case BreakerAbierto:
		return false, ErrBreakerAbierto
	case BreakerSemiAbierto:
		if b.sondeando {
			return false, ErrBreakerAbierto
		}
		b.sondeando = true
		return true, nil
	}
	return false, nil
}

func (b *Breaker) registrar(sonda, fallo, exito bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sonda {
		b.sondeando = false
		switch {
		case fallo:
			b.abrir()
		case exito:
			b.exitos++
			if b.exitos >= b.cfg.Exitos {
				b.cambiar(BreakerCerrado)
				b.fallos = 0
			}
		}
		return
	}

	// calls admitted before the breaker opened report late
	if b.estado != BreakerCerrado {
		return
	}
	switch {
	case fallo:
		b.fallos++
		if b.fallos >= b.cfg.Fallos {
			b.abrir()
		}
	case exito:
		b.fallos = 0
	}
}

// estadoActual moves open to half-open once Espera has passed. Callers hold mu.
func (b *Breaker) estadoActual() EstadoBreaker {
	if b.estado == BreakerAbierto && b.now().Sub(b.abiertoEn) >= b.cfg.Espera {
		b.cambiar(BreakerSemiAbierto)
		b.exitos = 0
	}
	return b.estado
}

func (b *Breaker) abrir() {
	b.abiertoEn = b.now()
	b.fallos = 0
	b.exitos = 0
	b.cambiar(BreakerAbierto)
}

func (b *Breaker) cambiar(a EstadoBreaker) {
	if b.estado == a {
		return
	}
	log.Warn().Str("breaker", b.cfg.Nombre).
		Stringer("desde", b.estado).Stringer("hacia", a).
		Msg("breaker cambio de estado")
	b.estado = a
}
