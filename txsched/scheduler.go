// txsched/scheduler.go
package txsched

import (
	"context"
	"sync/atomic"
	"time"

	"manchestertx-go/manchester"
	"manchestertx-go/x/mathx"
	"manchestertx-go/x/timex"
)

// Guard interval defaults, inherited from the reference transmitter. The
// scale is an empirical constant with no documented derivation.
const (
	DefaultGuardScale   = 2_048_000
	DefaultGuardQuantum = 250 * time.Microsecond
)

// Config centralises the static transmit timings. All values are fixed at
// construction; there is no runtime reconfiguration.
type Config struct {
	RefHz      uint32 // timing reference the hardware half-bit compare is derived from
	BitRate    uint32 // target bit rate; the tick source runs at twice this
	Convention manchester.Convention

	// Guard interval between packets: GuardTicks() quanta of GuardQuantum.
	GuardScale   uint32
	GuardQuantum time.Duration
}

func (c *Config) setDefaults() {
	if c.RefHz == 0 {
		c.RefHz = 125_000_000
	}
	if c.BitRate == 0 {
		c.BitRate = 50_000
	}
	if c.GuardScale == 0 {
		c.GuardScale = DefaultGuardScale
	}
	if c.GuardQuantum <= 0 {
		c.GuardQuantum = DefaultGuardQuantum
	}
}

// HalfBitTicks returns the reference-clock compare value for one half-bit
// period. A zero result is a configuration defect, not a runtime error.
func (c Config) HalfBitTicks() uint32 { return timex.HalfBitTicks(c.RefHz, c.BitRate) }

// HalfBitPeriod returns the half-bit period as a duration, for wall-clock
// tick sources.
func (c Config) HalfBitPeriod() time.Duration { return timex.HalfBitPeriod(c.BitRate) }

// GuardTicks returns the guard interval length in quanta:
// ceil(GuardScale / BitRate).
func (c Config) GuardTicks() uint32 { return mathx.CeilDiv(c.GuardScale, c.BitRate) }

// Scheduler owns the single transmit slot and serialises producers onto it.
// Exactly two execution contexts touch it: Tick (the half-bit callback) and
// the producer side (Submit / Run). The buffer's busy flag is the only
// synchronisation between them.
type Scheduler struct {
	cfg   Config
	buf   *manchester.Buffer
	enc   *manchester.Encoder
	ticks TickSource

	guard  time.Duration
	doneAt atomic.Int64 // UnixNano of the last packet completion, 0 before any
}

// New builds a scheduler driving pin with the configured convention and
// parks the line at the rest level. Attach a TickSource before submitting.
func New(pin manchester.Pin, cfg Config) *Scheduler {
	cfg.setDefaults()
	s := &Scheduler{
		cfg:   cfg,
		buf:   manchester.NewBuffer(),
		enc:   manchester.NewEncoder(pin, cfg.Convention),
		guard: time.Duration(cfg.GuardTicks()) * cfg.GuardQuantum,
	}
	s.enc.Arm()
	return s
}

// Attach binds the tick source whose callback must be Tick.
func (s *Scheduler) Attach(ts TickSource) { s.ticks = ts }

// Config returns the effective configuration after defaulting.
func (s *Scheduler) Config() Config { return s.cfg }

// Guard returns the enforced inter-packet guard interval.
func (s *Scheduler) Guard() time.Duration { return s.guard }

// Busy reports whether a packet is in flight.
func (s *Scheduler) Busy() bool { return s.buf.Busy() }

// Tick advances the encoder by one half-bit period. It is the tick-source
// callback: it runs to completion, takes no locks and allocates nothing.
// On packet completion it stops the tick source, records the completion
// time for the guard interval and releases the slot, in that order, so a
// producer that sees busy fall also sees the completion timestamp.
func (s *Scheduler) Tick() {
	if !s.buf.Busy() {
		return
	}
	if s.enc.Step(s.buf) {
		s.ticks.Disable()
		s.doneAt.Store(time.Now().UnixNano())
		s.buf.Release()
	}
}

// Submit copies payload into the slot and starts transmission. It reports
// false without touching the slot when the payload exceeds the capacity
// minus the framing byte, when a packet is still in flight, or while the
// guard interval since the previous packet has not elapsed. Rejection is
// the only in-band error; the caller retries later.
func (s *Scheduler) Submit(payload []byte) bool {
	if len(payload) > manchester.MaxPayload {
		return false
	}
	if s.buf.Busy() {
		return false
	}
	if d := s.doneAt.Load(); d != 0 && time.Duration(time.Now().UnixNano()-d) < s.guard {
		return false
	}
	if !s.buf.Load(payload) {
		return false
	}
	s.enc.Arm()
	s.ticks.Enable()
	return true
}

// Run models the reference control loop: fetch a payload, retry Submit
// until the slot frees up and the guard interval passes, repeat. The retry
// sleeps one guard quantum per attempt instead of hard-spinning. Run
// returns when ctx is cancelled; a packet already in flight still runs to
// completion tick by tick, since there is no mid-packet abort.
func (s *Scheduler) Run(ctx context.Context, next func() []byte) {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		drainTimer(timer)
	}
	defer timer.Stop()

	for ctx.Err() == nil {
		p := next()
		for !s.Submit(p) {
			resetTimer(timer, s.cfg.GuardQuantum)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}
	}
}
