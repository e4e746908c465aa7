package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/irctrakz/systatd/pkg/config"
	"github.com/irctrakz/systatd/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_DirectiveWarningLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() {
		logging.SetOutput(os.Stdout)
		_ = logging.SetFormat("text")
	})

	cfg := config.DefaultConfig()
	cfg.Logging.Format = "json"
	cfg.Locations = []config.Location{
		{Path: "/status", Directives: []string{"systat", "systat_param ifstat ifstat"}},
	}

	locs, err := setup(cfg)
	require.NoError(t, err)
	require.Len(t, locs, 1)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "duplicate value"))
	assert.Contains(t, out, `"level":"warning"`, "warning uses the configured format")
}

func TestSetup_Errors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "trace"
	_, err := setup(cfg)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Locations = nil
	_, err = setup(cfg)
	assert.Error(t, err)
}
