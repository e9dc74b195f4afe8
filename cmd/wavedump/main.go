// Command wavedump encodes a payload on the host and prints the resulting
// Manchester waveform, one character per half-bit period.
//
//	go run ./cmd/wavedump -conv ieee -payload "Hello Manchester!"
//
//go:build !rp2040 && !rp2350

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"manchestertx-go/manchester"
	"manchestertx-go/txsched"
)

func main() {
	var (
		payload = flag.String("payload", "Hello Manchester!", "payload text; a trailing NUL is appended")
		convArg = flag.String("conv", "thomas", "line code: thomas or ieee")
		bitRate = flag.Uint("bitrate", 50_000, "target bit rate (bits/s)")
		refHz   = flag.Uint("ref", 3_333_333, "timing reference frequency (Hz)")
		width   = flag.Int("width", 64, "half-bits per output row")
	)
	flag.Parse()

	var conv manchester.Convention
	switch strings.ToLower(*convArg) {
	case "thomas":
		conv = manchester.Thomas
	case "ieee":
		conv = manchester.IEEE
	default:
		fmt.Fprintf(os.Stderr, "wavedump: unknown convention %q\n", *convArg)
		os.Exit(2)
	}

	data := append([]byte(*payload), 0)
	buf := manchester.NewBuffer()
	if !buf.Load(data) {
		fmt.Fprintf(os.Stderr, "wavedump: payload exceeds %d bytes\n", manchester.MaxPayload)
		os.Exit(2)
	}

	pin := &manchester.RecorderPin{}
	enc := manchester.NewEncoder(pin, conv)
	enc.Arm()
	pin.Sample()
	for {
		done := enc.Step(buf)
		pin.Sample()
		if done {
			break
		}
	}

	cfg := txsched.Config{
		RefHz:      uint32(*refHz),
		BitRate:    uint32(*bitRate),
		Convention: conv,
		GuardScale: txsched.DefaultGuardScale,
	}
	fmt.Printf("convention=%s bytes_on_wire=%d half_bits=%d\n",
		conv, buf.Len(), len(pin.Levels()))
	fmt.Printf("half_bit_compare=%d (ref %d Hz) guard_ticks=%d\n",
		cfg.HalfBitTicks(), cfg.RefHz, cfg.GuardTicks())

	levels := pin.Levels()
	for row := 0; row < len(levels); row += *width {
		end := row + *width
		if end > len(levels) {
			end = len(levels)
		}
		var b strings.Builder
		for _, l := range levels[row:end] {
			if l {
				b.WriteByte('-')
			} else {
				b.WriteByte('_')
			}
		}
		fmt.Println(b.String())
	}
}
