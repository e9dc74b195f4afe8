package manchester

// RecorderPin implements Pin in memory and keeps a half-bit level history.
// The stepping loop calls Sample once per tick (and once at arm time) to
// build a waveform for inspection or decoding on the host.
type RecorderPin struct {
	level   bool
	history []bool
}

func (p *RecorderPin) Set(level bool) { p.level = level }
func (p *RecorderPin) Get() bool      { return p.level }
func (p *RecorderPin) Toggle()        { p.level = !p.level }

// Sample appends the current line level to the history.
func (p *RecorderPin) Sample() { p.history = append(p.history, p.level) }

// Levels returns the recorded half-bit levels in order.
func (p *RecorderPin) Levels() []bool { return p.history }

// Reset clears the history but keeps the current line level.
func (p *RecorderPin) Reset() { p.history = p.history[:0] }
