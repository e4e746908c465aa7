package systat

import (
	"fmt"
	"net/http"

	"github.com/irctrakz/systatd/pkg/directive"
)

// New returns the handler bound to a merged location conf.
func New(conf *directive.LocationConf, resolver Lookuper) (http.Handler, error) {
	switch conf.Handler {
	case directive.HandlerStatic:
		return NewStaticHandler(conf.Format), nil
	case directive.HandlerNetif:
		if resolver == nil {
			return nil, fmt.Errorf("location %q: no resolver for %s", conf.Path, conf.Query.Name)
		}
		return NewNetifHandler(conf.Query, resolver), nil
	}
	return nil, fmt.Errorf("location %q: no systat handler configured", conf.Path)
}
