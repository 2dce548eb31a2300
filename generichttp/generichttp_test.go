package generichttp

import (
	"encoding/json"
	"go/types"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHumanPayloadEncodesByType(t *testing.T) {
	cases := []struct {
		hp       HumanPayload
		expected string
	}{
		{HumanPayload{T: types.Float64, Float: 1.5}, `{"f64":1.5}`},
		{HumanPayload{T: types.Bool, Bool: true}, `{"bool":true}`},
		{HumanPayload{T: types.Int, Int: 7}, `{"int":7}`},
		{HumanPayload{T: types.String, String: "ok"}, `{"str":"ok"}`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		tc.hp.EncodeAndRespond(w, r)
		body := w.Body.String()
		// json encoder appends a newline
		if body != tc.expected+"\n" {
			t.Errorf("payload encoded as %q, expected %q", body, tc.expected)
		}
	}
}

func TestRouteTableEndpoints(t *testing.T) {
	rt := RouteTable{
		MethodPath{Method: http.MethodGet, Path: "/a"}:  func(w http.ResponseWriter, r *http.Request) {},
		MethodPath{Method: http.MethodPost, Path: "/a"}: func(w http.ResponseWriter, r *http.Request) {},
	}
	eps := rt.Endpoints()
	if len(eps) != 2 {
		t.Errorf("expected 2 endpoints, got %d", len(eps))
	}
}

func TestSubMuxSanitize(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"omc/cybaman", "/omc/cybaman"},
		{"/omc/cybaman", "/omc/cybaman"},
		{"/omc/cybaman/", "/omc/cybaman"},
	}
	for _, tc := range cases {
		if got := SubMuxSanitize(tc.input); got != tc.expected {
			t.Errorf("SubMuxSanitize(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestGetFloatHandler(t *testing.T) {
	h := GetFloat(func() (float64, error) { return 4000, nil })
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	f := FloatT{}
	if err := json.NewDecoder(w.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.F64 != 4000 {
		t.Errorf("handler returned %f, expected 4000", f.F64)
	}
}
