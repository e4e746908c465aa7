// Package server binds systat locations to an HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/irctrakz/systatd/pkg/config"
	"github.com/irctrakz/systatd/pkg/directive"
	"github.com/irctrakz/systatd/pkg/logging"
	"github.com/irctrakz/systatd/pkg/systat"
	"golang.org/x/net/netutil"
)

// Server serves the configured locations.
type Server struct {
	cfg       config.ServerConfig
	mux       *http.ServeMux
	metrics   *Metrics
	httpSrv   *http.Server
	errLog    io.Closer
	locations []*directive.LocationConf
}

// New registers a handler for every location. Resolver-mode locations
// share resolver, which is instrumented with the server's metrics.
func New(cfg config.ServerConfig, locations []*directive.LocationConf, resolver systat.Lookuper) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		mux:       http.NewServeMux(),
		metrics:   NewMetrics(),
		locations: locations,
	}

	var lookuper systat.Lookuper
	if resolver != nil {
		lookuper = s.metrics.InstrumentLookuper(resolver)
	}
	for _, loc := range locations {
		h, err := systat.New(loc, lookuper)
		if err != nil {
			return nil, err
		}
		s.mux.Handle(loc.Path, s.instrument(loc.Path, h))
		logging.Infof("server: location %s -> %s", loc.Path, describe(loc))
	}
	if cfg.MetricsPath != "" {
		s.mux.Handle(cfg.MetricsPath, s.metrics.Handler())
	}

	errLog := logging.Writer(logging.WarnLevel)
	s.errLog = errLog
	s.httpSrv = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  seconds(cfg.ReadTimeoutSec),
		WriteTimeout: seconds(cfg.WriteTimeoutSec),
		ErrorLog:     log.New(errLog, "", 0),
	}
	return s, nil
}

func describe(loc *directive.LocationConf) string {
	if loc.Handler == directive.HandlerNetif {
		return fmt.Sprintf("%s %s", loc.Query.Metric, loc.Query.Name)
	}
	return fmt.Sprintf("static %s", loc.Format)
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	if s.cfg.MaxConns > 0 {
		l = netutil.LimitListener(l, s.cfg.MaxConns)
	}
	logging.Infof("server: listening on %s", l.Addr())
	err := s.httpSrv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe listens on the configured address and serves.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(l)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpSrv.Shutdown(ctx)
	if cerr := s.errLog.Close(); err == nil {
		err = cerr
	}
	return err
}
