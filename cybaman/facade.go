package cybaman

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownRecord is returned when a record name does not map to a device
// field or command
var ErrUnknownRecord = errors.New("unknown record")

// record name suffixes for the per-axis endpoints
const (
	recSetpoint = "SP"
	recHome     = "HOME"
)

// comms state strings, as the host control system displays them
const (
	CommsEnabled  = "COMMS ENABLED"
	CommsDisabled = "COMMS DISABLED"
)

// Facade exposes the device through the record names the host control system
// uses, e.g. "A:SP" or "INITIALIZE".  It is the boundary between the PV layer
// and the controller; everything crosses it as strings.
//
// Writes issued while communications are disabled are silently ignored, which
// mirrors the device.  Record names are case insensitive, matching the axis
// handling in the controller.  Unknown record names are an error.
type Facade struct {
	c *Controller
}

// NewFacade returns a Facade over the given controller
func NewFacade(c *Controller) *Facade {
	return &Facade{c: c}
}

// Read returns the value of the named record, formatted for the host
func (f *Facade) Read(record string) (string, error) {
	record = strings.ToUpper(record)
	switch record {
	case "INITIALIZED":
		init, err := f.c.GetInitialized()
		if err != nil {
			return "", err
		}
		if init {
			return "TRUE", nil
		}
		return "FALSE", nil
	case "DISABLE":
		enabled, err := f.c.GetCommsEnabled()
		if err != nil {
			return "", err
		}
		if enabled {
			return CommsEnabled, nil
		}
		return CommsDisabled, nil
	case "_CALC_TM_AND_SET":
		tm, err := f.c.TMValue()
		if err != nil {
			return "", err
		}
		return formatFloat(tm), nil
	case "INITIALIZE", "RESET", "STOP":
		// triggers read back as zero so the host can see the record exists
		return "0", nil
	}
	axis, suffix := splitRecord(record)
	switch suffix {
	case "":
		pos, err := f.c.GetPos(axis)
		if err != nil {
			return "", unknownRecord(record)
		}
		return formatFloat(pos), nil
	case recSetpoint:
		sp, err := f.c.GetSetpoint(axis)
		if err != nil {
			return "", unknownRecord(record)
		}
		return formatFloat(sp), nil
	case recHome:
		if _, err := f.c.GetPos(axis); err != nil {
			return "", unknownRecord(record)
		}
		return "0", nil
	}
	return "", unknownRecord(record)
}

// Write applies a value to the named record.  For trigger records the value
// is ignored.
func (f *Facade) Write(record, value string) error {
	record = strings.ToUpper(record)
	switch record {
	case "INITIALIZE":
		return f.c.Initialize()
	case "RESET":
		return f.c.Reset()
	case "STOP":
		return f.c.Stop()
	}
	axis, suffix := splitRecord(record)
	switch suffix {
	case recSetpoint:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("record %s: %w", record, err)
		}
		if err := f.c.MoveAbs(axis, v); err != nil {
			return unknownRecord(record)
		}
		return nil
	case recHome:
		if err := f.c.Home(axis); err != nil {
			return unknownRecord(record)
		}
		return nil
	}
	return unknownRecord(record)
}

func splitRecord(record string) (axis, suffix string) {
	pieces := strings.SplitN(record, ":", 2)
	if len(pieces) == 2 {
		return pieces[0], pieces[1]
	}
	return record, ""
}

func unknownRecord(record string) error {
	return fmt.Errorf("%w: %q", ErrUnknownRecord, record)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
