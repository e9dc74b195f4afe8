package txsched

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"manchestertx-go/manchester"
)

// ---- fakes ----

type fakeTicks struct {
	enabled  bool
	enables  int
	disables int
}

func (f *fakeTicks) Enable()  { f.enabled = true; f.enables++ }
func (f *fakeTicks) Disable() { f.enabled = false; f.disables++ }

// safePin is a mutex-guarded pin for tests that drive ticks from a
// goroutine while the test body inspects the line.
type safePin struct {
	mu    sync.Mutex
	level bool
}

func (p *safePin) Set(level bool) { p.mu.Lock(); p.level = level; p.mu.Unlock() }
func (p *safePin) Toggle()        { p.mu.Lock(); p.level = !p.level; p.mu.Unlock() }
func (p *safePin) Get() bool      { p.mu.Lock(); defer p.mu.Unlock(); return p.level }

// fastCfg keeps guard and tick timings small enough for tests.
func fastCfg(conv manchester.Convention) Config {
	return Config{
		BitRate:      2_048_000, // GuardTicks == 1
		Convention:   conv,
		GuardQuantum: 20 * time.Millisecond,
	}
}

// drain manually ticks the scheduler until the tick source disables itself,
// returning the step count and the instant just before the final step.
func drain(t *testing.T, s *Scheduler, tk *fakeTicks) (int, time.Time) {
	t.Helper()
	steps := 0
	var before time.Time
	for tk.enabled {
		before = time.Now()
		s.Tick()
		steps++
		if steps > 16*manchester.BufferSize {
			t.Fatal("packet did not complete")
		}
	}
	return steps, before
}

// ---- tests ----

func TestScheduler_LineRestsBeforeFirstSubmit(t *testing.T) {
	for _, conv := range []manchester.Convention{manchester.Thomas, manchester.IEEE} {
		pin := &safePin{}
		New(pin, fastCfg(conv))
		if pin.Get() != conv.RestLevel() {
			t.Fatalf("%s: line at %v before first submit, want rest %v",
				conv, pin.Get(), conv.RestLevel())
		}
	}
}

func TestScheduler_SingleSlotExclusivity(t *testing.T) {
	pin := &safePin{}
	tk := &fakeTicks{}
	s := New(pin, fastCfg(manchester.Thomas))
	s.Attach(tk)

	if !s.Submit([]byte{0xDE, 0xAC}) {
		t.Fatal("first submit with idle slot must be accepted")
	}
	if !s.Busy() || !tk.enabled {
		t.Fatalf("busy=%v ticks=%v after accepted submit", s.Busy(), tk.enabled)
	}
	if s.Submit([]byte{0x01}) {
		t.Fatal("submit while busy must be rejected")
	}

	steps, _ := drain(t, s, tk)
	// 3 bytes on the wire (framing + 2 payload), top bit pre-emitted,
	// run-out on the final data edge: 16*3-2 ticks. The rejected submit
	// must not have shortened or replaced the in-flight packet.
	if steps != 16*3-2 {
		t.Fatalf("packet took %d ticks, want %d", steps, 16*3-2)
	}
	if s.Busy() {
		t.Fatal("slot still busy after completion")
	}
	if tk.disables != 1 {
		t.Fatalf("tick source disabled %d times, want 1", tk.disables)
	}
}

func TestScheduler_OversizedPayloadRejected(t *testing.T) {
	pin := &safePin{}
	tk := &fakeTicks{}
	s := New(pin, fastCfg(manchester.Thomas))
	s.Attach(tk)

	if s.Submit(make([]byte, manchester.BufferSize)) {
		t.Fatal("capacity-exceeding payload must be rejected")
	}
	if s.Busy() || tk.enables != 0 {
		t.Fatalf("rejected submit touched the slot: busy=%v enables=%d", s.Busy(), tk.enables)
	}
}

func TestScheduler_GuardIntervalBetweenPackets(t *testing.T) {
	pin := &safePin{}
	tk := &fakeTicks{}
	s := New(pin, fastCfg(manchester.Thomas))
	s.Attach(tk)

	if !s.Submit([]byte{0x42}) {
		t.Fatal("first submit rejected")
	}
	_, beforeLast := drain(t, s, tk)

	if s.Submit([]byte{0x43}) {
		t.Fatal("submit inside the guard interval must be rejected")
	}
	for !s.Submit([]byte{0x43}) {
		time.Sleep(time.Millisecond)
	}
	if elapsed := time.Since(beforeLast); elapsed < s.Guard() {
		t.Fatalf("second packet armed %v after completion, guard is %v", elapsed, s.Guard())
	}
	drain(t, s, tk)
}

func TestScheduler_RunTransmitsContinuously(t *testing.T) {
	pin := &safePin{}
	cfg := Config{
		BitRate:      5000,
		Convention:   manchester.IEEE,
		GuardScale:   5000, // one quantum
		GuardQuantum: time.Millisecond,
	}
	s := New(pin, cfg)
	ts := NewIntervalTicks(cfg.HalfBitPeriod(), s.Tick)
	defer ts.Close()
	s.Attach(ts)

	var fetches atomic.Int32
	next := func() []byte {
		fetches.Add(1)
		return []byte{0x55, 0x00}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx, next)
		close(done)
	}()
	<-done

	// Each fetch past the first implies the previous packet was accepted,
	// transmitted and guarded.
	if n := fetches.Load(); n < 3 {
		t.Fatalf("control loop fetched %d payloads, want at least 3", n)
	}
}

func TestIntervalTicks_DisableFromHandlerStopsTicks(t *testing.T) {
	var n atomic.Int32
	var ts *IntervalTicks
	ts = NewIntervalTicks(time.Millisecond, func() {
		if n.Add(1) == 5 {
			ts.Disable()
		}
	})
	defer ts.Close()

	ts.Enable()
	time.Sleep(60 * time.Millisecond)
	if got := n.Load(); got != 5 {
		t.Fatalf("handler ran %d times after in-handler disable, want 5", got)
	}
}

func TestConfig_Derivations(t *testing.T) {
	cfg := Config{RefHz: 3_333_333, BitRate: 50_000}
	cfg.setDefaults()
	if got := cfg.HalfBitTicks(); got != 33 {
		t.Fatalf("HalfBitTicks = %d, want 33", got)
	}
	if got := cfg.GuardTicks(); got != 41 {
		t.Fatalf("GuardTicks = %d, want 41", got)
	}
	if got := cfg.HalfBitPeriod(); got != 10*time.Microsecond {
		t.Fatalf("HalfBitPeriod = %v, want 10µs", got)
	}
}
