package systat

import (
	"net/http"

	"github.com/irctrakz/systatd/pkg/core"
)

// okToken is the body of every static response.
const okToken = "OK"

// StaticHandler answers GET and HEAD with the liveness token "OK".
type StaticHandler struct {
	format core.Format
}

// NewStaticHandler returns a static responder using format's content type.
func NewStaticHandler(format core.Format) *StaticHandler {
	return &StaticHandler{format: format}
}

// Handle builds the response document for method.
func (h *StaticHandler) Handle(method string) (core.ResponseDocument, error) {
	if err := checkMethod(method); err != nil {
		return core.ResponseDocument{}, err
	}
	return h.document(), nil
}

func (h *StaticHandler) document() core.ResponseDocument {
	return core.ResponseDocument{
		ContentType: h.format.ContentType(),
		Body:        []byte(okToken),
	}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func() (core.ResponseDocument, error) {
		return h.document(), nil
	})
}
