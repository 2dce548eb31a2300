// Package util contains misc internal utilities.
package util

import (
	"math"
	"net"
	"time"
)

// Limiter is a type that can check if a value falls between Min and Max
type Limiter struct {
	// Min is the lower limit
	Min float64

	// Max is the upper limit
	Max float64
}

// Check returns true if Min <= v <= Max
func (l Limiter) Check(v float64) bool {
	return (l.Min <= v) && (v <= l.Max)
}

// Clamp restricts x to the range [low, high]
func Clamp(x, low, high float64) float64 {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// AlmostEqual returns true if a and b differ by less than atol
func AlmostEqual(a, b, atol float64) bool {
	return math.Abs(b-a) < atol
}

// TCPSetup opens a new TCP connection and sets a timeout on connect, read, and write
func TCPSetup(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)
	return conn, nil
}
