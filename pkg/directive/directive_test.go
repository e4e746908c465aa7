package directive

import (
	"errors"
	"testing"

	"github.com/irctrakz/systatd/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation_Static(t *testing.T) {
	c, err := ParseLocation("/status", []string{"systat", "systat_format xml;"}, nil)
	require.NoError(t, err)
	assert.Equal(t, HandlerStatic, c.Handler)
	assert.Equal(t, core.FormatXML, c.Format)
}

func TestParseLocation_StaticDefaultsToPlain(t *testing.T) {
	c, err := ParseLocation("/status", []string{"systat"}, nil)
	require.NoError(t, err)
	assert.Equal(t, core.FormatPlain, c.Format)
	assert.Equal(t, ParamSet, c.Param)
}

func TestMerge_ParamPrecedence(t *testing.T) {
	main, err := ParseMain(nil)
	require.NoError(t, err)
	assert.Equal(t, uint(0), main.Param)

	c, err := ParseLocation("/s", []string{"systat", "systat_param ifstat"}, main)
	require.NoError(t, err)
	assert.Equal(t, ParamIfstat, c.Param)

	c, err = ParseLocation("/s", []string{"systat"}, main)
	require.NoError(t, err)
	assert.Equal(t, ParamSet, c.Param)
}

func TestParseLocation_Netif(t *testing.T) {
	c, err := ParseLocation("/tx", []string{"systat_netif tx_bytes eth0"}, nil)
	require.NoError(t, err)
	assert.Equal(t, HandlerNetif, c.Handler)
	assert.Equal(t, core.InterfaceQuery{Name: "eth0", Metric: core.MetricTxBytes}, c.Query)

	c, err = ParseLocation("/rx", []string{"  systat_netif   rx_bytes  wlan0 ; "}, nil)
	require.NoError(t, err)
	assert.Equal(t, core.MetricRxBytes, c.Query.Metric)
	assert.Equal(t, "wlan0", c.Query.Name)
}

func TestParseLocation_Errors(t *testing.T) {
	cases := []struct {
		name  string
		path  string
		lines []string
		want  string
	}{
		{"unsupported metric", "/tx", []string{"systat_netif tx_packets eth0"}, `unsupported argument "tx_packets"`},
		{"duplicate interface", "/tx", []string{"systat_netif tx_bytes eth0", "systat_netif tx_bytes eth1"}, "is duplicate"},
		{"missing interface", "/tx", []string{"systat_netif tx_bytes"}, "invalid number of arguments"},
		{"extra interface", "/tx", []string{"systat_netif tx_bytes eth0 eth1"}, "invalid number of arguments"},
		{"systat with args", "/s", []string{"systat on"}, "invalid number of arguments"},
		{"duplicate systat", "/s", []string{"systat", "systat"}, "is duplicate"},
		{"bad format", "/s", []string{"systat", "systat_format json"}, `invalid value "json"`},
		{"duplicate format", "/s", []string{"systat", "systat_format xml", "systat_format plain"}, "is duplicate"},
		{"bad param", "/s", []string{"systat", "systat_param cpu"}, `invalid value "cpu"`},
		{"unknown directive", "/s", []string{"systat_cpu"}, `unknown directive "systat_cpu"`},
		{"conflict netif after static", "/s", []string{"systat", "systat_netif tx_bytes eth0"}, "conflicts with"},
		{"conflict static after netif", "/s", []string{"systat_netif tx_bytes eth0", "systat"}, "conflicts with"},
		{"no handler", "/s", []string{"systat_format xml"}, "no systat handler configured"},
		{"relative path", "status", []string{"systat"}, "must start with"},
		{"wildcard path", "/{name}", []string{"systat"}, "invalid characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLocation(tc.path, tc.lines, nil)
			require.Error(t, err)
			var ce *core.ConfigError
			assert.True(t, errors.As(err, &ce))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseMain_RejectsLocationOnlyDirectives(t *testing.T) {
	_, err := ParseMain([]string{"systat"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not allowed in http context")

	_, err = ParseMain([]string{"systat_netif tx_bytes eth0"})
	require.Error(t, err)
}

func TestMerge_InheritsMainSettings(t *testing.T) {
	main, err := ParseMain([]string{"systat_format xml", "systat_param ifstat"})
	require.NoError(t, err)

	inherited, err := ParseLocation("/a", []string{"systat"}, main)
	require.NoError(t, err)
	assert.Equal(t, core.FormatXML, inherited.Format)
	assert.Equal(t, ParamIfstat, inherited.Param)

	overridden, err := ParseLocation("/b", []string{"systat", "systat_format plain"}, main)
	require.NoError(t, err)
	assert.Equal(t, core.FormatPlain, overridden.Format)
}

func TestSetParam_DuplicateValueIsNotFatal(t *testing.T) {
	c, err := ParseLocation("/s", []string{"systat", "systat_param ifstat ifstat"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ParamIfstat, c.Param)
}

func TestApply_IgnoresBlankLines(t *testing.T) {
	c := &LocationConf{Path: "/s", ctx: ContextLocation}
	assert.NoError(t, c.Apply("   "))
	assert.NoError(t, c.Apply(";"))
	assert.Equal(t, HandlerNone, c.Handler)
}

func TestValidate_EmptyInterfaceName(t *testing.T) {
	c := &LocationConf{Path: "/tx", Handler: HandlerNetif}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty interface name")
}
