package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/irctrakz/systatd/pkg/logging"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-Id"

// statusRecorder remembers the status and size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// requestID reuses a well-formed incoming id or mints a new one.
func requestID(r *http.Request) string {
	if v := r.Header.Get(RequestIDHeader); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}

// methodLabel bounds the cardinality of the method label.
func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return m
	}
	return "OTHER"
}

// instrument tags the response with a request id, counts it and writes an
// access log line.
func (s *Server) instrument(location string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		s.metrics.requests.WithLabelValues(location, methodLabel(r.Method), strconv.Itoa(rec.status)).Inc()

		fields := logrus.Fields{
			"request_id": id,
			"location":   location,
			"method":     r.Method,
			"status":     rec.status,
			"bytes":      rec.bytes,
			"remote":     r.RemoteAddr,
			"duration":   time.Since(start).String(),
		}
		if rec.status >= http.StatusInternalServerError {
			logging.WarnWithFields(fields, "request failed")
			return
		}
		logging.DebugWithFields(fields, "request")
	})
}
