// internal/platform/platform_rp2xxx.go
//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"github.com/sparques/pwm"

	"manchestertx-go/internal/uartfeed"
	"manchestertx-go/x/timex"
)

// ----------------------------- GPIO (RP2) ------------------------------------

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(b bool) { r.p.Set(b) }
func (r *rp2Pin) Get() bool  { return r.p.Get() }
func (r *rp2Pin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}
func (r *rp2Pin) Number() int { return r.n }

// DefaultTxPin returns the waveform output on GP4, mirroring the reference
// transmitter's PA4.
func DefaultTxPin() OutputPin { return &rp2Pin{p: machine.GP4, n: 4} }

// ----------------------------- Carrier output --------------------------------

// CarrierPin gates a fixed-frequency PWM carrier with the Manchester
// waveform, for IR/RF front ends that expect a modulated burst instead of
// a bare logic level. Logical high is carrier on at 50% duty.
type CarrierPin struct {
	pin   machine.Pin
	group pwm.Group
	ch    uint8
	duty  uint32
	level bool
}

// NewCarrierPin claims the PWM slice of pin and parks the carrier off.
func NewCarrierPin(pin machine.Pin, carrierHz uint32) *CarrierPin {
	pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	group := pwm.Get(pin)
	group.Configure(machine.PWMConfig{Period: timex.PeriodFromHz(carrierHz)})
	ch, _ := group.Channel(pin)
	group.Set(ch, 0)
	return &CarrierPin{
		pin:   pin,
		group: group,
		ch:    ch,
		duty:  group.Top() / 2,
	}
}

func (c *CarrierPin) ConfigureOutput(initial bool) error {
	c.Set(initial)
	return nil
}

func (c *CarrierPin) Set(level bool) {
	c.level = level
	if level {
		c.group.Set(c.ch, c.duty)
	} else {
		c.group.Set(c.ch, 0)
	}
}

func (c *CarrierPin) Get() bool { return c.level }

func (c *CarrierPin) Toggle() { c.Set(!c.level) }

func (c *CarrierPin) Number() int { return int(c.pin) }

// ----------------------------- UART (RP2) ------------------------------------

// rp2FeedPort adapts uartx to the port surface the feeder reads.
type rp2FeedPort struct{ u *uartx.UART }

func (p *rp2FeedPort) Buffered() int               { return p.u.Buffered() }
func (p *rp2FeedPort) Read(b []byte) (int, error)  { return p.u.Read(b) }
func (p *rp2FeedPort) ReadByte() (byte, error)     { return p.u.ReadByte() }
func (p *rp2FeedPort) Write(b []byte) (int, error) { return p.u.Write(b) }

// DefaultFeedPort configures UART0 on its board-default pins as the
// payload source.
func DefaultFeedPort(baud uint32) (uartfeed.Port, error) {
	hw := uartx.UART0
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       uartx.UART0_TX_PIN,
		RX:       uartx.UART0_RX_PIN,
	}); err != nil {
		return nil, err
	}
	return &rp2FeedPort{u: hw}, nil
}
