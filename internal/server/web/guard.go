package web

import (
	"net/http"

	"github.com/dmitrijs2005/gatekeeper/internal/server/access"
)

// guard runs chain before h. The {uid} path variable, when present, is the
// target identity of the operation.
func (s *Server) guard(chain access.Chain, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &access.Request{
			Identity: identity(r),
			ReturnTo: r.URL.RequestURI(),
			TargetID: pathVars(r)["uid"],
		}
		d := chain.Evaluate(r.Context(), req)
		s.metrics.AccessDecided(d.Outcome.String())

		switch d.Outcome {
		case access.Allow:
			h(w, r)
		case access.Redirect:
			http.Redirect(w, r, d.Location, http.StatusFound)
		default:
			writeError(w, http.StatusForbidden, "forbidden")
		}
	}
}
