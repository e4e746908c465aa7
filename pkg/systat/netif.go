package systat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/irctrakz/systatd/pkg/core"
	"github.com/irctrakz/systatd/pkg/logging"
	"github.com/sirupsen/logrus"
)

// Lookuper resolves an interface counter. *netif.Resolver implements it.
type Lookuper interface {
	Lookup(q core.InterfaceQuery) (uint64, error)
}

// NetifHandler answers GET and HEAD with the decimal value of a live
// interface counter.
type NetifHandler struct {
	query    core.InterfaceQuery
	resolver Lookuper
}

// NewNetifHandler binds query to resolver.
func NewNetifHandler(query core.InterfaceQuery, resolver Lookuper) *NetifHandler {
	return &NetifHandler{query: query, resolver: resolver}
}

// Handle builds the response document for method. The resolver is not
// consulted for methods other than GET and HEAD.
func (h *NetifHandler) Handle(method string) (core.ResponseDocument, error) {
	if err := checkMethod(method); err != nil {
		return core.ResponseDocument{}, err
	}
	return h.document()
}

func (h *NetifHandler) document() (core.ResponseDocument, error) {
	v, err := h.resolver.Lookup(h.query)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			logging.WarnWithFields(logrus.Fields{
				"interface": h.query.Name,
				"metric":    h.query.Metric.String(),
			}, "systat: %v", err)
		}
		return core.ResponseDocument{}, err
	}
	return core.ResponseDocument{
		ContentType: core.ContentTypePlain,
		Body:        strconv.AppendUint(nil, v, 10),
	}, nil
}

func (h *NetifHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serve(w, r, h.document)
}
