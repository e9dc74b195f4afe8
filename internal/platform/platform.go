// internal/platform/platform.go
package platform

import "manchestertx-go/manchester"

// OutputPin is a configured digital output carrying the Manchester
// waveform. It extends the encoder's pin surface with bring-up.
type OutputPin interface {
	manchester.Pin
	ConfigureOutput(initial bool) error
	Number() int
}
