// internal/platform/platform_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"errors"
	"sync"

	"manchestertx-go/internal/uartfeed"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements OutputPin in memory for host builds and tests.
type FakePin struct {
	mu      sync.Mutex
	number  int
	level   bool
	modeOut bool
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *FakePin) Toggle() {
	p.mu.Lock()
	p.level = !p.level
	p.mu.Unlock()
}

func (p *FakePin) Number() int { return p.number }

// DefaultTxPin returns the host stand-in for the waveform output.
func DefaultTxPin() OutputPin { return &FakePin{number: 4} }

// ----------------------------- UART (host) -----------------------------------

// errRxEmpty mirrors the hardware port, which errors on reads from an
// empty receive buffer instead of inventing bytes.
var errRxEmpty = errors.New("uart: rx buffer empty")

// HostUART implements uartfeed.Port for host-side runs. It is inert until
// Feed queues receive bytes.
type HostUART struct {
	mu  sync.Mutex
	buf []byte
}

// Feed queues bytes on the receive side.
func (u *HostUART) Feed(p []byte) {
	u.mu.Lock()
	u.buf = append(u.buf, p...)
	u.mu.Unlock()
}

func (u *HostUART) Buffered() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.buf)
}

func (u *HostUART) ReadByte() (byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.buf) == 0 {
		return 0, errRxEmpty
	}
	b := u.buf[0]
	u.buf = u.buf[1:]
	return b, nil
}

func (u *HostUART) Read(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.buf) == 0 {
		return 0, errRxEmpty
	}
	n := copy(p, u.buf)
	u.buf = u.buf[n:]
	return n, nil
}

func (u *HostUART) Write(p []byte) (int, error) { return len(p), nil }

// DefaultFeedPort returns an inert host UART; baud is recorded nowhere
// since there is no wire.
func DefaultFeedPort(baud uint32) (uartfeed.Port, error) {
	_ = baud
	return &HostUART{}, nil
}
