package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
)

// HandlersGroup is the fx value group every read-only endpoint joins.
const HandlersGroup = `group:"handlers"`

// Handler is one HTTP endpoint of the run history API.
type Handler interface {
	RegisterRoute(r chi.Router)
	Handle(w http.ResponseWriter, r *http.Request)
}

// AsRoute provides constructor's result as a Handler in HandlersGroup.
func AsRoute(constructor any) any {
	return fx.Annotate(
		constructor,
		fx.As(new(Handler)),
		fx.ResultTags(HandlersGroup),
	)
}

// Register mounts handlers on r in order. Nil entries are skipped so optional
// endpoints can be left out of the group.
func Register(r chi.Router, handlers []Handler) {
	for _, h := range handlers {
		if h == nil {
			continue
		}
		h.RegisterRoute(r)
	}
}
