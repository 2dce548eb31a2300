// Package motion provides an HTTP interface to motion controllers
package motion

/*
This file uses higher order functions to efficiently bind the supported
interfaces for a motion controller, which may implement any number of them.
*/
import (
	"github.com/isis-controls/cybaman/generichttp"
	"github.com/isis-controls/cybaman/util"
)

// Controller is used for the HTTP interface, which will check if the concrete
// type satisfies the other interfaces in this package and inject their routes
// automatically
type Controller interface {
	// Mover - all Controllers must be Movers
	Mover
}

// HTTPMotionController wraps a motion controller with HTTP
type HTTPMotionController struct {
	Controller

	RouteTable generichttp.RouteTable
}

// NewHTTPMotionController returns a new HTTP wrapper with the route table
// pre-configured.  limits holds the software travel limits per axis and may
// be nil.
func NewHTTPMotionController(c Controller, limits map[string]util.Limiter) HTTPMotionController {
	w := HTTPMotionController{Controller: c}
	rt := generichttp.RouteTable{}
	// the interface{}().(foo); ok syntax is an awful go-ism to test if c implements foo
	HTTPMove(c, limits, rt)
	if setpointer, ok := interface{}(c).(SetpointQueryer); ok {
		HTTPSetpoint(setpointer, rt)
	}
	if inpos, ok := interface{}(c).(InPositionQueryer); ok {
		HTTPInPosition(inpos, rt)
	}
	if initializer, ok := interface{}(c).(Initializer); ok {
		HTTPInitialize(initializer, rt)
	}
	if stopper, ok := interface{}(c).(Stopper); ok {
		HTTPStop(stopper, rt)
	}
	if resetter, ok := interface{}(c).(Resetter); ok {
		HTTPReset(resetter, rt)
	}
	if enabler, ok := interface{}(c).(CommsEnabler); ok {
		HTTPComms(enabler, rt)
	}
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface
func (h HTTPMotionController) RT() generichttp.RouteTable {
	return h.RouteTable
}
