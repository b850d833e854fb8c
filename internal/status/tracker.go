// internal/status/tracker.go
package status

import (
	"errors"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/mate3-sunspec/internal/sunspec"
)

// Tracker owns the health snapshot of one device.
// It is driven by poll results and a 1 Hz tick; it is not safe for
// concurrent use and belongs to the device's orchestrator goroutine.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts in HealthUnknown.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe folds one poll outcome into the snapshot and reports whether
// anything changed.
func (t *Tracker) Observe(err error) bool {
	prev := t.snap

	if err == nil {
		// Recovery / OK
		t.snap.Health = HealthOK
		t.snap.LastErrorCode = CodeNone
		t.snap.SecondsInError = 0
	} else {
		t.snap.Health = HealthError
		t.snap.LastErrorCode = ErrorCode(err)
		// NOTE: seconds_in_error increments on Tick only.
	}

	return prev != t.snap
}

// Tick advances seconds-in-error while the device is not OK.
// The counter saturates instead of wrapping.
func (t *Tracker) Tick() bool {
	if t.snap.Health == HealthOK {
		return false
	}
	if t.snap.SecondsInError >= SecondsInErrorMax {
		return false
	}
	t.snap.SecondsInError++
	return true
}

// ErrorCode maps a poll error to a stable numeric code.
func ErrorCode(err error) uint16 {
	if err == nil {
		return CodeNone
	}

	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		return CodeModbusException + uint16(mbErr.ExceptionCode)
	}

	switch {
	case errors.Is(err, sunspec.ErrNoSignature):
		return CodeNoSignature
	case errors.Is(err, sunspec.ErrNotOutback):
		return CodeNotOutback
	case errors.Is(err, sunspec.ErrChainNotTerminated):
		return CodeChainNotTerminated
	case errors.Is(err, sunspec.ErrAddressOverflow):
		return CodeAddressOverflow
	case errors.Is(err, sunspec.ErrUnavailable):
		return CodeUnavailable
	}

	return CodeGeneric
}
