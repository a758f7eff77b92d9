package runtime

import (
	"fmt"
	"io"
	"time"
)

// Host aggregates the services the interpreter needs from its embedder:
// an output sink for print and a clock for the clock() builtin.
type Host struct {
	out   io.Writer
	clock func() float64
}

// NewHost creates a Host writing to w. A nil clock selects seconds elapsed
// on a monotonic clock since the host was created.
func NewHost(w io.Writer, clock func() float64) *Host {
	if clock == nil {
		start := time.Now()
		clock = func() float64 { return time.Since(start).Seconds() }
	}
	return &Host{out: w, clock: clock}
}

// Println writes one line of program output.
func (h *Host) Println(s string) error {
	_, err := fmt.Fprintln(h.out, s)
	return err
}

func (h *Host) Now() float64 {
	return h.clock()
}
