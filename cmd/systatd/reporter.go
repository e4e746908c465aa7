package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/irctrakz/systatd/pkg/core"
	"github.com/irctrakz/systatd/pkg/directive"
	"github.com/irctrakz/systatd/pkg/logging"
	"github.com/irctrakz/systatd/pkg/systat"
)

type counterSample struct {
	Interface string `json:"iface"`
	Metric    string `json:"metric"`
	Value     uint64 `json:"value"`
	Error     string `json:"error,omitempty"`
}

type counterSnapshot struct {
	Timestamp string          `json:"ts"`
	Samples   []counterSample `json:"samples"`
}

// reportQueries returns the distinct interface queries served by locations.
func reportQueries(locations []*directive.LocationConf) []core.InterfaceQuery {
	seen := make(map[core.InterfaceQuery]bool)
	var out []core.InterfaceQuery
	for _, loc := range locations {
		if loc.Handler != directive.HandlerNetif || seen[loc.Query] {
			continue
		}
		seen[loc.Query] = true
		out = append(out, loc.Query)
	}
	return out
}

func runReporter(ctx context.Context, d time.Duration, format string, queries []core.InterfaceQuery, l systat.Lookuper) {
	if len(queries) == 0 {
		logging.Infof("reporter: no interface locations configured, not starting")
		return
	}
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		logging.Infof("%s", formatSnapshot(takeSnapshot(queries, l, time.Now()), format))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func takeSnapshot(queries []core.InterfaceQuery, l systat.Lookuper, now time.Time) counterSnapshot {
	snap := counterSnapshot{
		Timestamp: now.UTC().Format(time.RFC3339),
		Samples:   make([]counterSample, 0, len(queries)),
	}
	for _, q := range queries {
		s := counterSample{Interface: q.Name, Metric: q.Metric.String()}
		v, err := l.Lookup(q)
		if err != nil {
			s.Error = err.Error()
		} else {
			s.Value = v
		}
		snap.Samples = append(snap.Samples, s)
	}
	return snap
}

func formatSnapshot(snap counterSnapshot, format string) string {
	if format == "json" {
		b, _ := json.Marshal(snap)
		return "counters: " + string(b)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "counters: ts=%s", snap.Timestamp)
	for _, s := range snap.Samples {
		if s.Error != "" {
			fmt.Fprintf(&sb, " | %s %s=err", s.Interface, s.Metric)
			continue
		}
		fmt.Fprintf(&sb, " | %s %s=%d", s.Interface, s.Metric, s.Value)
	}
	return sb.String()
}
