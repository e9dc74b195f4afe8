// Command pico-tx: Manchester transmitter bring-up for RP2040/Pico.
//
// Build/flash (TinyGo):
//
//	tinygo flash -target pico ./cmd/pico-tx
//
// Wiring:
// - Waveform output on GP4 (reference transmitter used PA4).
// - UART0 on board-default pins; LF-terminated lines become packets.
//
//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"manchestertx-go/internal/platform"
	"manchestertx-go/internal/uartfeed"
	"manchestertx-go/manchester"
	"manchestertx-go/txsched"
)

const (
	bitRate  = 50_000
	convUsed = manchester.Thomas
	feedBaud = 115_200
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(3 * time.Second)
	println("== manchestertx: Pico demo (GP4 waveform + UART0 feed) ==")

	pin := platform.DefaultTxPin()
	if err := pin.ConfigureOutput(convUsed.RestLevel()); err != nil {
		println("tx pin configure error")
		return
	}

	cfg := txsched.Config{
		RefHz:      machine.CPUFrequency(),
		BitRate:    bitRate,
		Convention: convUsed,
	}
	sched := txsched.New(pin, cfg)
	ticks := txsched.NewIntervalTicks(cfg.HalfBitPeriod(), sched.Tick)
	sched.Attach(ticks)

	println("convention:", convUsed.String())
	println("half-bit compare:", cfg.HalfBitTicks())
	println("guard ticks:", cfg.GuardTicks())

	ctx := context.Background()

	// UART payload feed: each LF-terminated line goes out as one packet.
	if port, err := platform.DefaultFeedPort(feedBaud); err == nil {
		go uartfeed.New(sched, uartfeed.Config{Port: port}).Run(ctx)
	} else {
		println("uart0 configure error; canned payload only")
	}

	// Continuous example packet, like the reference firmware.
	payload := append([]byte("Hello Manchester!"), 0)
	sched.Run(ctx, func() []byte { return payload })
}
