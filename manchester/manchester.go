// manchester/manchester.go
package manchester

import "sync/atomic"

// Pin is the output-pin surface the encoder drives. It matches the output
// half of the platform GPIO abstraction so any configured output pin can
// carry the waveform.
type Pin interface {
	Set(level bool)
	Get() bool
	Toggle()
}

// Convention selects one of the two inverse Manchester line codes. The
// variant carries the per-convention constants: line rest level and the
// seed of the previous-bit tracker.
type Convention uint8

const (
	// Thomas is the G.E. Thomas convention: logical 1 is a high-to-low
	// transition at the bit centre; the line rests low between packets.
	Thomas Convention = iota
	// IEEE is the IEEE 802.3 convention: logical 1 is a low-to-high
	// transition at the bit centre; the line rests high between packets.
	IEEE
)

// RestLevel is the line level between packets (and the armed level that
// pre-emits the top bit of the framing byte).
func (c Convention) RestLevel() bool { return c == IEEE }

// seed is the initial previous-bit value for the convention.
func (c Convention) seed() bool { return c == IEEE }

func (c Convention) String() string {
	if c == IEEE {
		return "ieee"
	}
	return "thomas"
}

const (
	// BufferSize is the transmit slot capacity in bytes, framing byte included.
	BufferSize = 255
	// MaxPayload is the largest payload a single packet can carry.
	MaxPayload = BufferSize - 1
	// StartByte is the framing byte prepended to every packet. It only
	// provides a known initial transition reference on the wire.
	StartByte = 0x55

	// The armed pin level already represents the top bit of the framing
	// byte, so encoding resumes at bit 6.
	firstBitIndex = 6
)

// Buffer is the single transmit slot shared between the submitting control
// loop and the tick callback. The busy flag is the sole synchronisation
// primitive: the producer may write the slot only after observing busy
// false, and Load stores busy true as its final step so the callback never
// sees a half-written packet. The callback only reads the slot; Release
// clears busy once the last bit is out.
type Buffer struct {
	data   [BufferSize]byte
	length uint8 // queued bytes, framing byte included
	busy   atomic.Bool
}

func NewBuffer() *Buffer {
	b := &Buffer{}
	b.data[0] = StartByte
	return b
}

// Busy reports whether a packet is in flight.
func (b *Buffer) Busy() bool { return b.busy.Load() }

// Len returns the queued byte count, framing byte included.
func (b *Buffer) Len() int { return int(b.length) }

// Load copies payload in after the framing byte and marks the slot busy.
// It reports false for oversized payloads, leaving the slot untouched.
// The caller must have observed Busy()==false immediately beforehand.
func (b *Buffer) Load(payload []byte) bool {
	if len(payload) > MaxPayload {
		return false
	}
	copy(b.data[1:], payload)
	b.length = uint8(len(payload) + 1)
	b.busy.Store(true)
	return true
}

// Release marks the slot idle again. The transmit glue calls this once the
// encoder reports the packet complete; producers must not.
func (b *Buffer) Release() { b.busy.Store(false) }

// Encoder is the per-tick Manchester state machine. All of its state is
// explicit here and mutated only by Step, which the tick source invokes
// once per half-bit period. Step never blocks and never allocates; a logic
// error at this level corrupts the waveform for the rest of the packet and
// is only observable on the wire.
type Encoder struct {
	pin  Pin
	conv Convention

	clockPhase bool // true: next step is the mid-bit clock edge
	prev       bool // logical bit emitted on the previous data edge
	byteIndex  uint8
	bitIndex   uint8 // counts down, MSB first
}

func NewEncoder(pin Pin, conv Convention) *Encoder {
	return &Encoder{
		pin:        pin,
		conv:       conv,
		clockPhase: true,
		prev:       conv.seed(),
		bitIndex:   firstBitIndex,
	}
}

// Convention returns the line code the encoder was built with.
func (e *Encoder) Convention() Convention { return e.conv }

// Arm drives the pin to the convention's rest level so the pre-emitted top
// bit of the framing byte is already on the line when the first tick fires.
// Called outside the tick context, before the tick source is enabled.
func (e *Encoder) Arm() { e.pin.Set(e.conv.RestLevel()) }

// Step advances the state machine by one half-bit period and reports
// whether the packet just completed. On completion the pin is left at the
// rest level and the indices are reset for the next packet; the caller is
// expected to stop the tick source and Release the buffer.
func (e *Encoder) Step(b *Buffer) (done bool) {
	if e.clockPhase {
		// Mandatory mid-bit transition, common to every Manchester bit.
		e.pin.Toggle()
		e.clockPhase = false
		return false
	}

	next := b.data[e.byteIndex]&(byte(1)<<e.bitIndex) != 0
	if next == e.prev {
		// A repeated logical value needs a boundary transition to keep
		// exactly one centre edge per bit period.
		e.pin.Toggle()
	}

	if e.bitIndex == 0 {
		e.bitIndex = 7
		e.byteIndex++
		if e.byteIndex >= b.length {
			e.pin.Set(e.conv.RestLevel())
			e.byteIndex = 0
			e.bitIndex = firstBitIndex
			done = true
		}
	} else {
		e.bitIndex--
	}

	e.clockPhase = true
	e.prev = next
	return done
}
