package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/irctrakz/systatd/pkg/config"
	"github.com/irctrakz/systatd/pkg/directive"
	"github.com/irctrakz/systatd/pkg/logging"
	"github.com/irctrakz/systatd/pkg/netif"
	"github.com/irctrakz/systatd/pkg/server"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	checkOnly := flag.Bool("check", false, "validate the configuration and exit")
	writeConfig := flag.String("write-config", "", "write the effective configuration to this YAML or JSON file and exit")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		if err := config.LoadFromFile(*configPath, cfg); err != nil {
			logging.Fatalf("config: %v", err)
		}
	}
	config.LoadFromEnv(cfg)

	locations, err := setup(cfg)
	if err != nil {
		logging.Fatalf("config: %v", err)
	}
	if *writeConfig != "" {
		if err := cfg.SaveToFile(*writeConfig); err != nil {
			logging.Fatalf("config: %v", err)
		}
		fmt.Fprintf(os.Stdout, "configuration written to %s\n", *writeConfig)
		return
	}
	if *checkOnly {
		fmt.Fprintf(os.Stdout, "configuration ok: %d location(s)\n", len(locations))
		return
	}

	resolver := netif.NewResolver(nil)
	srv, err := server.New(cfg.Server, locations, resolver)
	if err != nil {
		logging.Fatalf("server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional periodic counter reporter
	if d, _ := cfg.Reporter.ParseInterval(); d > 0 {
		go runReporter(ctx, d, cfg.Reporter.Format, reportQueries(locations), resolver)
	}

	logging.InfoWithFields(logrus.Fields{
		"listen":    cfg.Server.Listen,
		"locations": len(locations),
		"max_conns": cfg.Server.MaxConns,
		"metrics":   cfg.Server.MetricsPath,
	}, "systatd starting")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if err != nil {
			logging.Fatalf("server: %v", err)
		}
		return
	case <-ctx.Done():
	}

	logging.Infof("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logging.Errorf("shutdown: %v", err)
	}
}

// setup validates the settings, applies logging and then parses the
// directives once, so directive warnings go to the configured log.
func setup(cfg *config.Config) ([]*directive.LocationConf, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyLogging(); err != nil {
		return nil, err
	}
	return cfg.Compile()
}
