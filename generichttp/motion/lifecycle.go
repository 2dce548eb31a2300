package motion

import (
	"net/http"

	"github.com/isis-controls/cybaman/generichttp"
)

// Some controllers, e.g. the cybaman, initialize and stop as a whole device
// rather than axis by axis.  These interfaces describe that lifecycle.

// Initializer is a type which may initialize itself, engaging the control
// electronics
type Initializer interface {
	// Initialize the device.  Calling this on an initialized device is a no-op.
	Initialize() error

	// GetInitialized returns true if the device has been initialized
	GetInitialized() (bool, error)
}

// Stopper is a type which can stop, dropping out of the initialized state
type Stopper interface {
	// Stop halts the device and clears the initialized flag
	Stop() error
}

// Resetter is a type which can restore itself to its power-on baseline state
type Resetter interface {
	// Reset restores the device to the state captured at initialization
	Reset() error
}

// CommsEnabler is a type with a communications enable switch.  While comms
// are disabled the device ignores writes.
type CommsEnabler interface {
	// EnableComms enables communication with the device
	EnableComms() error

	// DisableComms disables communication with the device
	DisableComms() error

	// GetCommsEnabled returns true if communication with the device is enabled
	GetCommsEnabled() (bool, error)
}

// HTTPInitialize adds initialization routes to the route table
func HTTPInitialize(i Initializer, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/initialize"}] = generichttp.Trigger(i.Initialize)
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/initialized"}] = generichttp.GetBool(i.GetInitialized)
}

// HTTPStop adds a stop route to the route table
func HTTPStop(s Stopper, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/stop"}] = generichttp.Trigger(s.Stop)
}

// HTTPReset adds a reset route to the route table
func HTTPReset(rs Resetter, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/reset"}] = generichttp.Trigger(rs.Reset)
}

// HTTPComms adds communication enable/disable routes to the route table
func HTTPComms(c CommsEnabler, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/comms"}] = generichttp.GetBool(c.GetCommsEnabled)
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/comms"}] = generichttp.SetBool(func(b bool) error {
		if b {
			return c.EnableComms()
		}
		return c.DisableComms()
	})
}
