package cybaman_test

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/isis-controls/cybaman/cybaman"
	"github.com/isis-controls/cybaman/generichttp"
	"github.com/isis-controls/cybaman/util"
)

func newHTTPServer(t *testing.T, limits map[string]util.Limiter) (*httptest.Server, *cybaman.Controller) {
	t.Helper()
	c := cybaman.NewController()
	c.Initialize()
	wrapper := cybaman.NewHTTPWrapper(c, limits)
	r := chi.NewRouter()
	wrapper.RT().Bind(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, c
}

func getFloat(t *testing.T, url string) float64 {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s returned %d", url, resp.StatusCode)
	}
	f := generichttp.FloatT{}
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	return f.F64
}

func postFloat(t *testing.T, url string, v float64) {
	t.Helper()
	buf, _ := json.Marshal(generichttp.FloatT{F64: v})
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST %s returned %d", url, resp.StatusCode)
	}
}

func TestHTTPPositionAndSetpoint(t *testing.T) {
	srv, c := newHTTPServer(t, nil)
	postFloat(t, srv.URL+"/axis/A/pos", 25)
	settle(t, c, "A")
	if got := getFloat(t, srv.URL+"/axis/A/pos"); math.Abs(got-25) > 0.01 {
		t.Errorf("position over HTTP %f, expected 25", got)
	}
	if got := getFloat(t, srv.URL+"/axis/A/setpoint"); got != 25 {
		t.Errorf("setpoint over HTTP %f, expected 25", got)
	}
}

func TestHTTPTM(t *testing.T) {
	srv, c := newHTTPServer(t, nil)
	settle(t, c)
	postFloat(t, srv.URL+"/axis/B/pos", 30)
	if got := getFloat(t, srv.URL+"/tm"); math.Abs(got-6000) > 1001 {
		t.Errorf("tm over HTTP %f, expected 6000", got)
	}
}

func TestHTTPLifecycle(t *testing.T) {
	srv, _ := newHTTPServer(t, nil)
	resp, err := http.Post(srv.URL+"/stop", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/initialized")
	if err != nil {
		t.Fatal(err)
	}
	b := generichttp.BoolT{}
	json.NewDecoder(resp.Body).Decode(&b)
	resp.Body.Close()
	if b.Bool {
		t.Error("device should read uninitialized after POST /stop")
	}

	resp, err = http.Post(srv.URL+"/initialize", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	resp, err = http.Get(srv.URL + "/initialized")
	if err != nil {
		t.Fatal(err)
	}
	json.NewDecoder(resp.Body).Decode(&b)
	resp.Body.Close()
	if !b.Bool {
		t.Error("device should read initialized after POST /initialize")
	}
}

func TestHTTPRecordFacade(t *testing.T) {
	srv, c := newHTTPServer(t, nil)
	resp, err := http.Get(srv.URL + "/pv/DISABLE")
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	resp.Body.Close()
	if got := string(buf[:n]); got != "COMMS ENABLED" {
		t.Errorf("GET /pv/DISABLE returned %q", got)
	}

	resp, err = http.Post(srv.URL+"/pv/C:SP", "text/plain", bytes.NewReader([]byte("42")))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /pv/C:SP returned %d", resp.StatusCode)
	}
	settle(t, c, "C")
	if got, _ := c.GetPos("C"); math.Abs(got-42) > 0.01 {
		t.Errorf("position %f after record write, expected 42", got)
	}
}

func TestHTTPUnknownRecord(t *testing.T) {
	srv, _ := newHTTPServer(t, nil)
	resp, err := http.Get(srv.URL + "/pv/NOT_A_RECORD")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown record returned %d, expected 404", resp.StatusCode)
	}
}

func TestHTTPRecordBadValueIsBadRequest(t *testing.T) {
	// A:SP exists, so an unparseable value is a client error, not a 404
	srv, _ := newHTTPServer(t, nil)
	resp, err := http.Post(srv.URL+"/pv/A:SP", "text/plain", bytes.NewReader([]byte("not-a-number")))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad value on known record returned %d, expected 400", resp.StatusCode)
	}
}

func TestHTTPUnknownAxisRejected(t *testing.T) {
	srv, _ := newHTTPServer(t, nil)
	resp, err := http.Get(srv.URL + "/axis/Q/pos")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown axis returned %d, expected 400", resp.StatusCode)
	}
}

func TestHTTPAxisCaseInsensitive(t *testing.T) {
	srv, c := newHTTPServer(t, nil)
	postFloat(t, srv.URL+"/axis/b/pos", 7)
	settle(t, c, "B")
	if got := getFloat(t, srv.URL+"/axis/b/pos"); math.Abs(got-7) > 0.01 {
		t.Errorf("position over lowercase axis route %f, expected 7", got)
	}
}

func TestHTTPSoftwareLimits(t *testing.T) {
	limits := map[string]util.Limiter{"A": {Min: -100, Max: 100}}
	srv, c := newHTTPServer(t, limits)

	buf, _ := json.Marshal(generichttp.FloatT{F64: 150})
	resp, err := http.Post(srv.URL+"/axis/A/pos", "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("out of limits move returned %d, expected 400", resp.StatusCode)
	}
	if sp, _ := c.GetSetpoint("A"); sp != 0 {
		t.Errorf("setpoint moved to %f by a rejected command", sp)
	}

	// within limits the move goes through
	postFloat(t, srv.URL+"/axis/A/pos", 50)
	if sp, _ := c.GetSetpoint("A"); sp != 50 {
		t.Errorf("setpoint %f after in-limits move, expected 50", sp)
	}

	// axis B carries no limit, nothing to enforce
	postFloat(t, srv.URL+"/axis/B/pos", 150)
	if sp, _ := c.GetSetpoint("B"); sp != 150 {
		t.Errorf("setpoint %f on unrestricted axis, expected 150", sp)
	}
}

func TestHTTPRelativeMoveLimited(t *testing.T) {
	limits := map[string]util.Limiter{"C": {Min: -10, Max: 10}}
	srv, c := newHTTPServer(t, limits)
	postFloat(t, srv.URL+"/axis/C/pos", 8)
	settle(t, c, "C")

	// 8 + 5 lands past the limit; the resolved target is what gets checked
	buf, _ := json.Marshal(generichttp.FloatT{F64: 5})
	resp, err := http.Post(srv.URL+"/axis/C/pos?relative=true", "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("out of limits relative move returned %d, expected 400", resp.StatusCode)
	}
	if sp, _ := c.GetSetpoint("C"); sp != 8 {
		t.Errorf("setpoint %f after rejected relative move, expected 8", sp)
	}
}

func TestHTTPLimitsQuery(t *testing.T) {
	limits := map[string]util.Limiter{"A": {Min: -100, Max: 100}}
	srv, _ := newHTTPServer(t, limits)
	resp, err := http.Get(srv.URL + "/axis/A/limits")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	lim := util.Limiter{}
	if err := json.NewDecoder(resp.Body).Decode(&lim); err != nil {
		t.Fatal(err)
	}
	if lim.Min != -100 || lim.Max != 100 {
		t.Errorf("limits query returned %+v", lim)
	}
}
