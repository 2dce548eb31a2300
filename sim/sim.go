// Package sim serves a cybaman controller's backdoor over TCP, mimicking the
// hardware simulator's out-of-band command channel.  Test harnesses use it to
// force device-internal state; it is never exposed to production clients.
//
// The protocol is line oriented ASCII:
//
//	set <property> <value>
//	get <property>
//
// properties use the simulator's names, e.g. "a_setpoint" or
// "home_position_axis_b".  Replies are "ok", a bare number, or "err <reason>".
package sim

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/isis-controls/cybaman/cybaman"
)

const homePrefix = "home_position_axis_"

// Server accepts backdoor connections and applies their commands to a
// controller.  Create one with NewServer.
type Server struct {
	bd cybaman.Backdoor

	mu sync.Mutex
	ln net.Listener
}

// NewServer returns a Server driving the given backdoor
func NewServer(bd cybaman.Backdoor) *Server {
	return &Server{bd: bd}
}

// Listen binds the server to addr; use addr ":0" for an ephemeral port and
// Addr to discover it
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	go s.acceptLoop(ln)
	return nil
}

// Addr returns the address the server is listening on
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops listening and terminates the accept loop
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		reply := s.dispatch(scanner.Text())
		if _, err := fmt.Fprintln(conn, reply); err != nil {
			log.Println("sim: write to backdoor client failed:", err)
			return
		}
	}
}

func (s *Server) dispatch(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "err empty command"
	}
	switch fields[0] {
	case "set":
		if len(fields) != 3 {
			return "err set requires a property and a value"
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return "err " + err.Error()
		}
		if err := s.set(fields[1], v); err != nil {
			return "err " + err.Error()
		}
		return "ok"
	case "get":
		if len(fields) != 2 {
			return "err get requires a property"
		}
		v, err := s.get(fields[1])
		if err != nil {
			return "err " + err.Error()
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "err unknown verb " + fields[0]
}

func (s *Server) set(property string, v float64) error {
	axis, kind := parseProperty(property)
	switch kind {
	case propSetpoint:
		return s.bd.SetSetpoint(axis, v)
	case propHome:
		return s.bd.SetHomePosition(axis, v)
	default:
		return s.bd.SetPosition(axis, v)
	}
}

func (s *Server) get(property string) (float64, error) {
	axis, kind := parseProperty(property)
	switch kind {
	case propSetpoint:
		return s.bd.Setpoint(axis)
	case propHome:
		return s.bd.HomePosition(axis)
	default:
		return s.bd.Position(axis)
	}
}

type propKind int

const (
	propPosition propKind = iota
	propSetpoint
	propHome
)

// parseProperty maps simulator property names to an axis and a field,
// "a" => (A, position); "b_setpoint" => (B, setpoint);
// "home_position_axis_c" => (C, home)
func parseProperty(property string) (string, propKind) {
	if strings.HasPrefix(property, homePrefix) {
		return strings.ToUpper(strings.TrimPrefix(property, homePrefix)), propHome
	}
	if strings.HasSuffix(property, "_setpoint") {
		return strings.ToUpper(strings.TrimSuffix(property, "_setpoint")), propSetpoint
	}
	return strings.ToUpper(property), propPosition
}
