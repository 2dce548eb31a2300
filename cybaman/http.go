package cybaman

import (
	"errors"
	"io/ioutil"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/isis-controls/cybaman/generichttp"
	"github.com/isis-controls/cybaman/generichttp/motion"
	"github.com/isis-controls/cybaman/util"
)

// HTTPWrapper exposes a Controller over HTTP.  Axis and lifecycle routes come
// from the motion package; the device-specific TM value and the record-name
// facade are bound here.
type HTTPWrapper struct {
	motion.HTTPMotionController

	facade *Facade
}

// NewHTTPWrapper returns an HTTP wrapper for the controller with the route
// table pre-configured.  limits holds the software travel limits per axis and
// may be nil for an unrestricted device.
func NewHTTPWrapper(c *Controller, limits map[string]util.Limiter) HTTPWrapper {
	w := HTTPWrapper{HTTPMotionController: motion.NewHTTPMotionController(c, limits)}
	w.facade = NewFacade(c)
	rt := w.RT()
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/tm"}] = generichttp.GetFloat(c.TMValue)
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/pv/{record}"}] = w.readRecord
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/pv/{record}"}] = w.writeRecord
	return w
}

// readRecord serves a record read through the facade; the body is the bare
// record value, as the host-side channel access tooling expects
func (h HTTPWrapper) readRecord(w http.ResponseWriter, r *http.Request) {
	record := chi.URLParam(r, "record")
	val, err := h.facade.Read(record)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(val))
}

// writeRecord applies the request body to a record through the facade
func (h HTTPWrapper) writeRecord(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	record := chi.URLParam(r, "record")
	err = h.facade.Write(record, string(body))
	if err != nil {
		// a record that exists but got an unparseable value is the
		// client's fault, not a missing resource
		status := http.StatusBadRequest
		if errors.Is(err, ErrUnknownRecord) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusOK)
}
