package motion

import (
	"encoding/json"
	"errors"
	"fmt"
	"go/types"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/isis-controls/cybaman/generichttp"
	"github.com/isis-controls/cybaman/util"
)

// Axes is the device's fixed axis complement.  The binder layer rejects
// anything outside it before a request reaches the controller.
var Axes = []string{"A", "B", "C"}

var errClamped = errors.New("requested position violates software limits, aborted")

// Mover describes an interface with position-related methods for axes
type Mover interface {
	// GetPos gets the current position of an axis
	GetPos(string) (float64, error)

	// MoveAbs moves an axis to an absolute position
	MoveAbs(string, float64) error

	// MoveRel moves an axis a relative amount
	MoveRel(string, float64) error

	// Home homes an axis
	Home(string) error
}

// SetpointQueryer is a type which can report the commanded target of an axis,
// which may differ from its position while a move is in flight
type SetpointQueryer interface {
	// GetSetpoint returns the setpoint of an axis
	GetSetpoint(string) (float64, error)
}

// InPositionQueryer is a type which can query whether an axis is in position
type InPositionQueryer interface {
	// GetInPosition returns True if the axis is in position
	GetInPosition(string) (bool, error)
}

// popAxis pulls the axis URL parameter and normalizes its case.  Axes the
// device does not have are bounced with StatusBadRequest; the bool reports
// whether handling should continue.
func popAxis(w http.ResponseWriter, r *http.Request) (string, bool) {
	axis := strings.ToUpper(chi.URLParam(r, "axis"))
	for _, known := range Axes {
		if axis == known {
			return axis, true
		}
	}
	http.Error(w, fmt.Sprintf("unknown axis %q, expected one of %v", axis, Axes), http.StatusBadRequest)
	return "", false
}

// popRelative parses the relative query parameter, defaulting to absolute
func popRelative(r *http.Request) (bool, error) {
	relative := r.URL.Query().Get("relative")
	if relative == "" {
		relative = "false"
	}
	return strconv.ParseBool(relative)
}

// HTTPMove adds routes for the mover to the route table.  limits holds the
// server imposed software limits per axis and may be nil for an unrestricted
// device.
func HTTPMove(iface Mover, limits map[string]util.Limiter, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/axis/{axis}/home"}] = Home(iface)
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/axis/{axis}/pos"}] = GetPos(iface)
	table[generichttp.MethodPath{Method: http.MethodPost, Path: "/axis/{axis}/pos"}] = SetPos(iface, limits)
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/axis/{axis}/limits"}] = Limits(limits)
}

// HTTPSetpoint adds routes for setpoint queries to the route table
func HTTPSetpoint(iface SetpointQueryer, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/axis/{axis}/setpoint"}] = GetSetpoint(iface)
}

// HTTPInPosition adds routes for InPosition to the route table
func HTTPInPosition(iface InPositionQueryer, table generichttp.RouteTable) {
	table[generichttp.MethodPath{Method: http.MethodGet, Path: "/axis/{axis}/inposition"}] = GetInPosition(iface)
}

// GetPos returns an HTTP handler func from a mover that gets the position of an axis
func GetPos(m Mover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis, ok := popAxis(w, r)
		if !ok {
			return
		}
		pos, err := m.GetPos(axis)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := generichttp.HumanPayload{T: types.Float64, Float: pos}
		hp.EncodeAndRespond(w, r)
	}
}

// SetPos returns an HTTP handler func from a mover that triggers an absolute
// or relative move on an axis based on the relative query parameter.  The
// resolved target is checked against the axis limit, if one exists, before
// any motion is commanded; violations are bounced with StatusBadRequest.
func SetPos(m Mover, limits map[string]util.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis, ok := popAxis(w, r)
		if !ok {
			return
		}
		relative, err := popRelative(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f := generichttp.FloatT{}
		err = json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		target := f.F64
		if relative {
			// in the relative case, shift the command by currPos
			currPos, err := m.GetPos(axis)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			target += currPos
		}
		if lim, bounded := limits[axis]; bounded && !lim.Check(target) {
			http.Error(w, errClamped.Error(), http.StatusBadRequest)
			return
		}
		if relative {
			err = m.MoveRel(axis, f.F64)
		} else {
			err = m.MoveAbs(axis, target)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// Home returns an HTTP handler func from a mover that homes an axis
func Home(m Mover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis, ok := popAxis(w, r)
		if !ok {
			return
		}
		err := m.Home(axis)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// GetSetpoint returns an http.HandlerFunc for s.GetSetpoint
func GetSetpoint(s SetpointQueryer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis, ok := popAxis(w, r)
		if !ok {
			return
		}
		sp, err := s.GetSetpoint(axis)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := generichttp.HumanPayload{T: types.Float64, Float: sp}
		hp.EncodeAndRespond(w, r)
	}
}

// GetInPosition returns an http.HandlerFunc for i.GetInPosition
func GetInPosition(i InPositionQueryer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis, ok := popAxis(w, r)
		if !ok {
			return
		}
		inpos, err := i.GetInPosition(axis)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := generichttp.HumanPayload{T: types.Bool, Bool: inpos}
		hp.EncodeAndRespond(w, r)
	}
}

// Limits returns an HTTP handler func that returns the limits for an axis,
// or null when the axis is unrestricted
func Limits(limits map[string]util.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis, ok := popAxis(w, r)
		if !ok {
			return
		}
		lim, bounded := limits[axis]
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		var err error
		if !bounded {
			err = json.NewEncoder(w).Encode(nil)
		} else {
			err = json.NewEncoder(w).Encode(lim)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
