package timing

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Middleware times every request passing through a mux router and prints
// "Handler <METHOD> <route> finished". The route is the matched path template
// when there is one, the raw path otherwise.
func Middleware(r *Reporter) mux.MiddlewareFunc {
	r = orDefault(r)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			path := req.URL.Path
			if route := mux.CurrentRoute(req); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					path = tpl
				}
			}
			msg := fmt.Sprintf("Handler %s %s finished", req.Method, path)
			r.measure(msg, func() error {
				next.ServeHTTP(w, req)
				return nil
			})
		})
	}
}
