package stubapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Auth       *AuthHandler
	Cases      resourceRoutes
	Judges     resourceRoutes
	Lawyers    resourceRoutes
	Schedules  resourceRoutes
	Regenerate *RegenerateHandler
	// Protect wraps resource and regenerate routes, typically RequireSession.
	Protect    func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter registers every route at the root and again under /api.
func NewRouter(cfg RouterConfig) http.Handler {
	root := mux.NewRouter()
	register(root, cfg)
	register(root.PathPrefix("/api").Subrouter(), cfg)

	responder := newResponder(nil)
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeDetail(r.Context(), w, http.StatusNotFound, detailNotFound)
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeDetail(r.Context(), w, http.StatusMethodNotAllowed, "Method \""+r.Method+"\" not allowed.")
	})

	var handler http.Handler = root
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func register(r *mux.Router, cfg RouterConfig) {
	protect := cfg.Protect
	if protect == nil {
		protect = func(next http.Handler) http.Handler { return next }
	}

	if cfg.Auth != nil {
		r.HandleFunc("/auth/check/", cfg.Auth.Check).Methods(http.MethodGet)
		r.HandleFunc("/auth/login/", cfg.Auth.Login).Methods(http.MethodPost)
		r.HandleFunc("/auth/register/", cfg.Auth.Register).Methods(http.MethodPost)
		r.HandleFunc("/auth/logout/", cfg.Auth.Logout).Methods(http.MethodPost)
	}

	if cfg.Regenerate != nil {
		r.HandleFunc("/health/", cfg.Regenerate.Health).Methods(http.MethodGet)
		r.Handle("/regenerate/", protect(http.HandlerFunc(cfg.Regenerate.Regenerate))).Methods(http.MethodGet)
	}

	for path, routes := range map[string]resourceRoutes{
		"/cases":     cfg.Cases,
		"/judges":    cfg.Judges,
		"/lawyers":   cfg.Lawyers,
		"/schedules": cfg.Schedules,
	} {
		if routes == nil {
			continue
		}
		r.Handle(path+"/", protect(http.HandlerFunc(routes.List))).Methods(http.MethodGet)
		r.Handle(path+"/", protect(http.HandlerFunc(routes.Create))).Methods(http.MethodPost)
		item := path + "/{id:[0-9]+}/"
		r.Handle(item, protect(http.HandlerFunc(routes.Retrieve))).Methods(http.MethodGet)
		r.Handle(item, protect(http.HandlerFunc(routes.Update))).Methods(http.MethodPut)
		r.Handle(item, protect(http.HandlerFunc(routes.Delete))).Methods(http.MethodDelete)
	}
}
