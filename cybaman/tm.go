package cybaman

// The TM ("motion time") value is a scalar the device derives from the
// magnitude of the most recent setpoint change.  The manufacturer flowchart
// only documents a handful of sample points, so the mapping is kept as an
// explicit band table rather than a formula; adjust the bands here if more of
// the device's behavior becomes known.
//
// Known samples: no change -> 4000, delta 30 -> 6000, delta ~50 -> 10000,
// delta 1 -> 4000.

// tmFloor is the TM value for small or no movement
const tmFloor = 4000

// tmBand maps setpoint deltas up to (and including) Width to a TM value
type tmBand struct {
	Width float64
	TM    float64
}

// tmBands must be sorted by Width ascending and non-decreasing in TM
var tmBands = []tmBand{
	{Width: 2, TM: tmFloor},
	{Width: 20, TM: 5000},
	{Width: 40, TM: 6000},
	{Width: 60, TM: 10000},
}

// tmOverflow is the TM value for deltas beyond the last band
const tmOverflow = 12000

// tmForDelta maps the absolute magnitude of a setpoint change to a TM value
func tmForDelta(delta float64) float64 {
	for _, band := range tmBands {
		if delta <= band.Width {
			return band.TM
		}
	}
	return tmOverflow
}
