// internal/uartfeed/feeder.go
package uartfeed

import (
	"context"
	"time"

	"tinygo.org/x/drivers"

	"manchestertx-go/manchester"
	"manchestertx-go/x/mathx"
)

// Submitter is the transmit surface the feeder drives. txsched.Scheduler
// satisfies it.
type Submitter interface {
	Submit(payload []byte) bool
}

// Port is the serial surface the feeder reads: the drivers UART contract
// plus the byte-wise read every uartx-style port carries, so the poll loop
// needs no scratch buffer.
type Port interface {
	drivers.UART
	ReadByte() (byte, error)
}

// Config for a feeder. Zero values get sensible defaults.
type Config struct {
	Port     Port
	MaxFrame int           // line clamp, 1..manchester.MaxPayload (default 64)
	Poll     time.Duration // idle poll interval (default 1ms)
	Retry    time.Duration // submit retry backoff (default 1ms)
}

// Feeder accumulates LF-terminated lines from a UART and hands each one to
// the transmit slot, retrying while the slot is busy or inside the guard
// interval. CR is ignored; bytes beyond MaxFrame are dropped until the next
// LF. The feeder is the single producer: it never writes the slot except
// through Submit.
type Feeder struct {
	cfg  Config
	sub  Submitter
	line []byte
}

func New(sub Submitter, cfg Config) *Feeder {
	if cfg.MaxFrame == 0 {
		cfg.MaxFrame = 64
	}
	cfg.MaxFrame = mathx.Clamp(cfg.MaxFrame, 1, manchester.MaxPayload)
	if cfg.Poll <= 0 {
		cfg.Poll = time.Millisecond
	}
	if cfg.Retry <= 0 {
		cfg.Retry = time.Millisecond
	}
	return &Feeder{
		cfg:  cfg,
		sub:  sub,
		line: make([]byte, 0, cfg.MaxFrame),
	}
}

// Run consumes the port until ctx is cancelled. It polls Buffered rather
// than blocking so cancellation is never held up by a quiet line.
func (f *Feeder) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if f.cfg.Port.Buffered() == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(f.cfg.Poll):
			}
			continue
		}
		b, err := f.cfg.Port.ReadByte()
		if err != nil {
			continue
		}
		switch b {
		case '\r':
			// ignore
		case '\n':
			f.flush(ctx)
		default:
			if len(f.line) < f.cfg.MaxFrame {
				f.line = append(f.line, b)
			}
		}
	}
}

// flush submits the accumulated line, spinning with backoff until the slot
// accepts it or ctx is cancelled. Empty lines are dropped.
func (f *Feeder) flush(ctx context.Context) {
	if len(f.line) == 0 {
		return
	}
	for !f.sub.Submit(f.line) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(f.cfg.Retry):
		}
	}
	f.line = f.line[:0]
}
