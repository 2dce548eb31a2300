// Package cybaman provides a simulated Cybaman Reviver, a three axis
// motion control device, and maps it to HTTP.
//
// The device carries three axes, A, B, and C.  Each axis servos its
// position toward its setpoint.  The device as a whole is initialized,
// stopped, and reset; a reset restores the state captured at the most
// recent initialization.  Writing a setpoint recomputes the motion time
// ("TM") value from the magnitude of the change.
package cybaman

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/isis-controls/cybaman/util"
)

const (
	// homeTravelFloor is a device safety policy; setpoints below this value
	// are pulled up to it before a homing move begins, so that homing never
	// commands an excessively long single move.
	homeTravelFloor = -150

	// velocity is the axis travel rate in device units per second
	velocity = 100

	// convergenceTol is the width of the in-position band
	convergenceTol = 1e-4

	// servoPeriod paces the background servo loop; only Run uses it,
	// Tick is pure with respect to wall time
	servoPeriod = 5 * time.Millisecond
)

// ErrUnknownAxis is returned when an axis other than A, B, or C is commanded
var ErrUnknownAxis = errors.New("unknown axis, expected A, B, or C")

// axisState is the scalar state of one axis
type axisState struct {
	pos    float64
	sp     float64
	home   float64
	homing bool
}

// step advances pos toward sp at the given rate, snapping to sp on overshoot.
// returns true if the axis arrived
func (a *axisState) step(dist float64) bool {
	if util.AlmostEqual(a.pos, a.sp, convergenceTol) {
		a.pos = a.sp
		return true
	}
	if a.sp < a.pos {
		dist = -dist
	}
	next := a.pos + dist
	// overshoot; -> + and -> - direction cases
	if (a.pos < a.sp) && (next > a.sp) {
		next = a.sp
	}
	if (a.pos > a.sp) && (next < a.sp) {
		next = a.sp
	}
	a.pos = next
	return a.pos == a.sp
}

// snapshot is the baseline state restored by a reset
type snapshot struct {
	pos  float64
	sp   float64
	home float64
}

// Controller is a simulated Cybaman Reviver.  The zero value is not usable,
// create one with NewController.  All methods are safe for concurrent use.
type Controller struct {
	sync.Mutex
	axes        map[string]*axisState
	baseline    map[string]snapshot
	initialized bool
	disabled    bool
	tm          float64
}

// NewController returns a Controller with all axes at zero, communications
// enabled, and the device not yet initialized
func NewController() *Controller {
	c := &Controller{
		axes: map[string]*axisState{
			"A": {},
			"B": {},
			"C": {},
		},
		baseline: make(map[string]snapshot),
		tm:       tmFloor,
	}
	c.snapshot()
	return c
}

// axis returns the state for the named axis, or ErrUnknownAxis.  Axis names
// are case insensitive.  callers must hold the lock.
func (c *Controller) axis(name string) (*axisState, error) {
	ax, ok := c.axes[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAxis, name)
	}
	return ax, nil
}

// snapshot captures the current axis state as the reset baseline.
// callers must hold the lock.
func (c *Controller) snapshot() {
	for name, ax := range c.axes {
		c.baseline[name] = snapshot{pos: ax.pos, sp: ax.sp, home: ax.home}
	}
}

// Initialize brings the device into the initialized state and captures the
// baseline that a later Reset restores.  It is idempotent.  Ignored while
// communications are disabled.
func (c *Controller) Initialize() error {
	c.Lock()
	defer c.Unlock()
	if c.disabled {
		return nil
	}
	c.initialized = true
	c.snapshot()
	return nil
}

// GetInitialized returns true if the device is initialized
func (c *Controller) GetInitialized() (bool, error) {
	c.Lock()
	defer c.Unlock()
	return c.initialized, nil
}

// Stop halts the device, clearing the initialized flag.  Axes cease to servo
// until the device is initialized again.  Ignored while communications are
// disabled.
func (c *Controller) Stop() error {
	c.Lock()
	defer c.Unlock()
	if c.disabled {
		return nil
	}
	c.initialized = false
	for _, ax := range c.axes {
		ax.homing = false
	}
	return nil
}

// Reset restores every axis to the baseline captured at the most recent
// initialization and leaves the device initialized; no separate Initialize
// call is needed afterward.  Ignored while communications are disabled.
func (c *Controller) Reset() error {
	c.Lock()
	defer c.Unlock()
	if c.disabled {
		return nil
	}
	for name, ax := range c.axes {
		base := c.baseline[name]
		ax.pos = base.pos
		ax.sp = base.sp
		ax.home = base.home
		ax.homing = false
	}
	c.initialized = true
	return nil
}

// EnableComms enables communication with the device
func (c *Controller) EnableComms() error {
	c.Lock()
	defer c.Unlock()
	c.disabled = false
	return nil
}

// DisableComms disables communication with the device; subsequent writes are
// silently ignored until comms are enabled again
func (c *Controller) DisableComms() error {
	c.Lock()
	defer c.Unlock()
	c.disabled = true
	return nil
}

// GetCommsEnabled returns true if communication with the device is enabled
func (c *Controller) GetCommsEnabled() (bool, error) {
	c.Lock()
	defer c.Unlock()
	return !c.disabled, nil
}

// GetPos gets the current position of an axis
func (c *Controller) GetPos(axis string) (float64, error) {
	c.Lock()
	defer c.Unlock()
	ax, err := c.axis(axis)
	if err != nil {
		return 0, err
	}
	return ax.pos, nil
}

// GetSetpoint returns the setpoint of an axis
func (c *Controller) GetSetpoint(axis string) (float64, error) {
	c.Lock()
	defer c.Unlock()
	ax, err := c.axis(axis)
	if err != nil {
		return 0, err
	}
	return ax.sp, nil
}

// MoveAbs commands an axis to an absolute position by writing its setpoint.
// The TM value is recomputed from the magnitude of the setpoint change.
// Ignored while communications are disabled.
func (c *Controller) MoveAbs(axis string, pos float64) error {
	c.Lock()
	defer c.Unlock()
	ax, err := c.axis(axis)
	if err != nil {
		return err
	}
	if c.disabled {
		return nil
	}
	delta := pos - ax.sp
	if delta < 0 {
		delta = -delta
	}
	c.tm = tmForDelta(delta)
	ax.sp = pos
	ax.homing = false
	return nil
}

// MoveRel commands an axis a relative amount from its current setpoint
func (c *Controller) MoveRel(axis string, dPos float64) error {
	c.Lock()
	defer c.Unlock()
	ax, err := c.axis(axis)
	if err != nil {
		return err
	}
	if c.disabled {
		return nil
	}
	delta := dPos
	if delta < 0 {
		delta = -delta
	}
	c.tm = tmForDelta(delta)
	ax.sp += dPos
	ax.homing = false
	return nil
}

// Home sends an axis to its home position.  If the setpoint is below the
// travel floor (-150) it is first reassigned to exactly the floor, then the
// axis travels to its setpoint before retargeting home; this limits the
// length of any single homing move.  Ignored while communications are
// disabled.
func (c *Controller) Home(axis string) error {
	c.Lock()
	defer c.Unlock()
	ax, err := c.axis(axis)
	if err != nil {
		return err
	}
	if c.disabled {
		return nil
	}
	ax.sp = util.Clamp(ax.sp, homeTravelFloor, math.Inf(1))
	ax.homing = true
	return nil
}

// GetInPosition returns true if the axis has arrived at its setpoint and is
// not in the middle of a homing sequence
func (c *Controller) GetInPosition(axis string) (bool, error) {
	c.Lock()
	defer c.Unlock()
	ax, err := c.axis(axis)
	if err != nil {
		return false, err
	}
	if ax.homing {
		return false, nil
	}
	return util.AlmostEqual(ax.pos, ax.sp, convergenceTol), nil
}

// TMValue returns the most recently computed motion time value
func (c *Controller) TMValue() (float64, error) {
	c.Lock()
	defer c.Unlock()
	return c.tm, nil
}

// Backdoor returns the out-of-band state injection capability for this
// controller.  It is intended for test harnesses only and is never part of
// the device's own command set.
func (c *Controller) Backdoor() Backdoor {
	return Backdoor{c: c}
}

// Tick advances the simulation by dt.  A stopped device does not servo.
// Homing axes travel to their setpoint first, then retarget the home
// position; retargeting does not recompute the TM value.
func (c *Controller) Tick(dt time.Duration) {
	c.Lock()
	defer c.Unlock()
	if !c.initialized {
		return
	}
	dist := velocity * dt.Seconds()
	for _, ax := range c.axes {
		arrived := ax.step(dist)
		if arrived && ax.homing {
			ax.sp = ax.home
			ax.homing = false
		}
	}
}

// Run drives the servo loop until the context is canceled
func (c *Controller) Run(ctx context.Context) {
	tick := time.NewTicker(servoPeriod)
	defer tick.Stop()
	last := time.Now()
	for {
		select {
		case now := <-tick.C:
			c.Tick(now.Sub(last))
			last = now
		case <-ctx.Done():
			return
		}
	}
}
