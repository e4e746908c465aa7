// Package systat implements the HTTP handlers of the systat locations: a
// static "OK" responder and a live interface counter.
package systat

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/irctrakz/systatd/pkg/core"
	"github.com/irctrakz/systatd/pkg/logging"
)

// allowedMethods is sent with 405 responses.
const allowedMethods = "GET, HEAD"

// StatusFor maps a handler error to the HTTP status it surfaces as.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func checkMethod(method string) error {
	if method != http.MethodGet && method != http.MethodHead {
		return core.ErrMethodNotAllowed
	}
	return nil
}

// discardBody drains the request body so the connection can be reused.
func discardBody(r *http.Request) {
	if r.Body == nil || r.Body == http.NoBody {
		return
	}
	if n, err := io.Copy(io.Discard, r.Body); err != nil {
		logging.Debugf("systat: discarding request body after %d bytes: %v", n, err)
	}
}

// serve runs the common request contract: method check, body drain, then
// build. Nothing is written before build returns, so the status always
// reflects the outcome.
func serve(w http.ResponseWriter, r *http.Request, build func() (core.ResponseDocument, error)) {
	if err := checkMethod(r.Method); err != nil {
		writeStatus(w, StatusFor(err))
		return
	}
	discardBody(r)

	doc, err := build()
	if err != nil {
		writeStatus(w, StatusFor(err))
		return
	}
	writeDocument(w, r, doc)
}

// writeDocument sends doc with status 200. HEAD requests get the headers
// of the equivalent GET and no body.
func writeDocument(w http.ResponseWriter, r *http.Request, doc core.ResponseDocument) {
	h := w.Header()
	h.Set("Content-Type", doc.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(doc.Body); err != nil {
		logging.Debugf("systat: write response: %v", err)
	}
}

// writeStatus sends an empty response with status.
func writeStatus(w http.ResponseWriter, status int) {
	h := w.Header()
	if status == http.StatusMethodNotAllowed {
		h.Set("Allow", allowedMethods)
	}
	h.Set("Content-Length", "0")
	w.WriteHeader(status)
}
