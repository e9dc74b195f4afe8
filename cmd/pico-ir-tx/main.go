// Command pico-ir-tx: Manchester over a 38 kHz IR carrier on RP2040.
// The logic level gates the carrier instead of driving the pin directly,
// so an IR LED (or OOK RF stage) on GP14 sees modulated bursts.
//
//	tinygo flash -target pico ./cmd/pico-ir-tx
//
//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"manchestertx-go/internal/platform"
	"manchestertx-go/manchester"
	"manchestertx-go/txsched"
)

const (
	bitRate   = 2_000 // IR receivers need slow bits under a 38 kHz carrier
	carrierHz = 38_000
)

func main() {
	time.Sleep(3 * time.Second)
	println("== manchestertx: Pico IR demo (GP14 carrier) ==")

	pin := platform.NewCarrierPin(machine.GP14, carrierHz)
	if err := pin.ConfigureOutput(manchester.Thomas.RestLevel()); err != nil {
		println("carrier pin configure error")
		return
	}

	cfg := txsched.Config{
		RefHz:      machine.CPUFrequency(),
		BitRate:    bitRate,
		Convention: manchester.Thomas,
	}
	sched := txsched.New(pin, cfg)
	ticks := txsched.NewIntervalTicks(cfg.HalfBitPeriod(), sched.Tick)
	sched.Attach(ticks)

	payload := append([]byte("Hello Manchester!"), 0)
	sched.Run(context.Background(), func() []byte { return payload })
}
