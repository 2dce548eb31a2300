package cybaman

// Backdoor injects device state directly, bypassing command validation and
// the communications disable gate.  It exists so test harnesses can arrange
// preconditions the way the hardware simulator's backdoor does; production
// clients never hold one.  Obtain it from Controller.Backdoor.
type Backdoor struct {
	c *Controller
}

// SetPosition overwrites the reported position of an axis
func (b Backdoor) SetPosition(axis string, pos float64) error {
	b.c.Lock()
	defer b.c.Unlock()
	ax, err := b.c.axis(axis)
	if err != nil {
		return err
	}
	ax.pos = pos
	return nil
}

// SetSetpoint overwrites the setpoint of an axis without recomputing the
// TM value
func (b Backdoor) SetSetpoint(axis string, sp float64) error {
	b.c.Lock()
	defer b.c.Unlock()
	ax, err := b.c.axis(axis)
	if err != nil {
		return err
	}
	ax.sp = sp
	ax.homing = false
	return nil
}

// SetHomePosition overwrites the configured home location of an axis
func (b Backdoor) SetHomePosition(axis string, home float64) error {
	b.c.Lock()
	defer b.c.Unlock()
	ax, err := b.c.axis(axis)
	if err != nil {
		return err
	}
	ax.home = home
	return nil
}

// Position reads the position of an axis
func (b Backdoor) Position(axis string) (float64, error) {
	return b.c.GetPos(axis)
}

// Setpoint reads the setpoint of an axis
func (b Backdoor) Setpoint(axis string) (float64, error) {
	return b.c.GetSetpoint(axis)
}

// HomePosition reads the configured home location of an axis
func (b Backdoor) HomePosition(axis string) (float64, error) {
	b.c.Lock()
	defer b.c.Unlock()
	ax, err := b.c.axis(axis)
	if err != nil {
		return 0, err
	}
	return ax.home, nil
}
