package sim

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/isis-controls/cybaman/util"
)

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 10 * time.Second
)

// Client speaks the backdoor line protocol.  Create one with Dial.
// It holds a single connection and is not safe for concurrent use; the
// backdoor is a test arrangement channel, one caller at a time.
type Client struct {
	conn net.Conn
	rdr  *bufio.Reader
}

// Dial connects to a backdoor server, retrying with exponential backoff
// so a harness can start the client before the simulator is up
func Dial(addr string) (*Client, error) {
	var conn net.Conn
	op := func() error {
		var err error
		conn, err = util.TCPSetup(addr, dialTimeout)
		return err
	}
	// the backoff will cease on the timeout so we don't spin forever
	// against a simulator that never comes up
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     50 * time.Millisecond,
		RandomizationFactor: 0.5,
		Multiplier:          2,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      10 * time.Second,
		Clock:               backoff.SystemClock})
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, rdr: bufio.NewReader(conn)}, nil
}

// Set assigns a simulator property, e.g. Set("a_setpoint", -155)
func (c *Client) Set(property string, v float64) error {
	reply, err := c.roundTrip(fmt.Sprintf("set %s %s", property, strconv.FormatFloat(v, 'f', -1, 64)))
	if err != nil {
		return err
	}
	if reply != "ok" {
		return fmt.Errorf("backdoor set %s: %s", property, reply)
	}
	return nil
}

// Get reads a simulator property
func (c *Client) Get(property string) (float64, error) {
	reply, err := c.roundTrip("get " + property)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(reply, 64)
	if err != nil {
		return 0, fmt.Errorf("backdoor get %s: %s", property, reply)
	}
	return v, nil
}

// Close terminates the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) roundTrip(line string) (string, error) {
	deadline := time.Now().Add(ioTimeout)
	c.conn.SetReadDeadline(deadline)
	c.conn.SetWriteDeadline(deadline)
	if _, err := fmt.Fprintln(c.conn, line); err != nil {
		return "", err
	}
	reply, err := c.rdr.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
