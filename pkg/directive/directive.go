// Package directive parses the systat configuration directives and merges
// main-level settings into locations.
//
// A directive is a single line "name arg ...", optionally terminated by a
// semicolon:
//
//	systat
//	systat_format plain|xml
//	systat_param ifstat ...
//	systat_netif tx_bytes|rx_bytes <interface>
package directive

import (
	"fmt"
	"strings"

	"github.com/irctrakz/systatd/pkg/core"
	"github.com/irctrakz/systatd/pkg/logging"
)

// Context is the configuration scope a directive appears in.
type Context uint8

const (
	ContextMain Context = 1 << iota
	ContextLocation
)

func (c Context) String() string {
	if c == ContextMain {
		return "http"
	}
	return "location"
}

// Handler is the content handler bound to a location.
type Handler int

const (
	HandlerNone Handler = iota
	// HandlerStatic answers with the fixed "OK" token.
	HandlerStatic
	// HandlerNetif answers with a live interface counter.
	HandlerNetif
)

func (h Handler) String() string {
	switch h {
	case HandlerStatic:
		return "static"
	case HandlerNetif:
		return "netif"
	}
	return "none"
}

// Bits of the systat_param bitmask. Reserved for per-format flags.
// ParamSet is what a location ends up with when no scope sets the
// directive; named values start above it.
const (
	ParamSet    uint = 0x0001
	ParamIfstat uint = 0x0002
)

var paramMask = map[string]uint{
	"ifstat": ParamIfstat,
}

// LocationConf is the configuration of one scope. Main-level confs only
// carry Format and Param.
type LocationConf struct {
	Path    string
	Handler Handler
	Format  core.Format
	Param   uint
	Query   core.InterfaceQuery

	ctx       Context
	formatSet bool
	querySet  bool
}

type command struct {
	contexts Context
	minArgs  int
	maxArgs  int // -1 for unbounded
	set      func(c *LocationConf, name string, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"systat":        {contexts: ContextLocation, minArgs: 0, maxArgs: 0, set: setStatic},
		"systat_format": {contexts: ContextMain | ContextLocation, minArgs: 1, maxArgs: 1, set: setFormat},
		"systat_param":  {contexts: ContextMain | ContextLocation, minArgs: 1, maxArgs: -1, set: setParam},
		"systat_netif":  {contexts: ContextLocation, minArgs: 2, maxArgs: 2, set: setNetif},
	}
}

// Split tokenizes a directive line.
func Split(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, ";")
	return strings.Fields(line)
}

// Apply parses and applies one directive line to c.
func (c *LocationConf) Apply(line string) error {
	fields := Split(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]
	cmd, ok := commands[name]
	if !ok {
		return c.errorf("", "unknown directive %q", name)
	}
	if cmd.contexts&c.ctx == 0 {
		return c.errorf(name, "is not allowed in %s context", c.ctx)
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return c.errorf(name, "has invalid number of arguments")
	}
	return cmd.set(c, name, args)
}

func (c *LocationConf) errorf(name, format string, args ...interface{}) error {
	return &core.ConfigError{Location: c.Path, Directive: name, Msg: fmt.Sprintf(format, args...)}
}

func setStatic(c *LocationConf, name string, _ []string) error {
	switch c.Handler {
	case HandlerStatic:
		return c.errorf(name, "is duplicate")
	case HandlerNetif:
		return c.errorf(name, "conflicts with \"systat_netif\"")
	}
	c.Handler = HandlerStatic
	return nil
}

func setFormat(c *LocationConf, name string, args []string) error {
	if c.formatSet {
		return c.errorf(name, "is duplicate")
	}
	f, ok := core.ParseFormat(args[0])
	if !ok {
		return c.errorf(name, "has invalid value %q, it must be \"plain\" or \"xml\"", args[0])
	}
	c.Format = f
	c.formatSet = true
	return nil
}

func setParam(c *LocationConf, name string, args []string) error {
	for _, a := range args {
		bit, ok := paramMask[a]
		if !ok {
			return c.errorf(name, "has invalid value %q", a)
		}
		if c.Param&bit != 0 {
			logging.Warnf("config: duplicate value %q in \"%s\" directive", a, name)
		}
		c.Param |= bit
	}
	return nil
}

func setNetif(c *LocationConf, name string, args []string) error {
	metric, ok := core.ParseMetric(args[0])
	if !ok {
		return c.errorf(name, "has unsupported argument %q", args[0])
	}
	if c.querySet {
		return c.errorf(name, "is duplicate")
	}
	if c.Handler == HandlerStatic {
		return c.errorf(name, "conflicts with \"systat\"")
	}
	if args[1] == "" {
		return c.errorf(name, "has an empty interface name")
	}
	c.Query = core.InterfaceQuery{Name: args[1], Metric: metric}
	c.querySet = true
	c.Handler = HandlerNetif
	return nil
}

// ParseMain builds the main-level conf from lines.
func ParseMain(lines []string) (*LocationConf, error) {
	c := &LocationConf{ctx: ContextMain}
	for _, l := range lines {
		if err := c.Apply(l); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ParseLocation builds the conf of the location at path, merges parent
// into it and checks that a handler is bound. parent may be nil.
func ParseLocation(path string, lines []string, parent *LocationConf) (*LocationConf, error) {
	c := &LocationConf{Path: path, ctx: ContextLocation}
	if !strings.HasPrefix(path, "/") {
		return nil, &core.ConfigError{Location: path, Msg: "path must start with \"/\""}
	}
	if strings.ContainsAny(path, "{} \t") {
		return nil, &core.ConfigError{Location: path, Msg: "path contains invalid characters"}
	}
	for _, l := range lines {
		if err := c.Apply(l); err != nil {
			return nil, err
		}
	}
	if parent == nil {
		parent = &LocationConf{ctx: ContextMain}
	}
	Merge(parent, c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Merge fills the settings child left unset from parent, defaulting the
// format to plain and the param mask to ParamSet.
func Merge(parent, child *LocationConf) {
	if !child.formatSet {
		child.Format = core.FormatPlain
		if parent.formatSet {
			child.Format = parent.Format
		}
		child.formatSet = true
	}
	if child.Param == 0 {
		child.Param = parent.Param
		if child.Param == 0 {
			child.Param = ParamSet
		}
	}
}

// Validate checks a merged location conf.
func (c *LocationConf) Validate() error {
	switch c.Handler {
	case HandlerNone:
		return &core.ConfigError{Location: c.Path, Msg: "no systat handler configured"}
	case HandlerNetif:
		if c.Query.Name == "" {
			return c.errorf("systat_netif", "has an empty interface name")
		}
	}
	return nil
}
