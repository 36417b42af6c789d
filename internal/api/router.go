// internal/api/router.go
package api

import (
	"net/http"
	"os"
	"path/filepath"

	activityapi "mergington-activities/internal/api/activities"
	analyticsapi "mergington-activities/internal/api/analytics"
	apperrors "mergington-activities/internal/common/errors"
	httpx "mergington-activities/internal/common/http"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const indexPath = "/static/index.html"

type RouterConfig struct {
	StaticDir      string
	MetricsEnabled bool
	MetricsPath    string
}

type Dependencies struct {
	Enrollment activityapi.Service
	Analytics  analyticsapi.Service
	Obs        *observability.Observability
	Logger     logger.Logger
}

// NewRouter wires every public route plus health, metrics and static files.
func NewRouter(cfg RouterConfig, deps Dependencies) http.Handler {
	log := deps.Logger.WithFields(map[string]interface{}{"component": "http"})
	obs := deps.Obs
	if obs == nil {
		obs = &observability.Observability{}
	}
	errHandler := apperrors.NewErrorHandler(log)

	r := mux.NewRouter()
	r.Use(recoverMiddleware(errHandler, log), observeMiddleware(obs), logMiddleware(log))

	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, indexPath, http.StatusTemporaryRedirect)
	}).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
	}

	activityapi.NewHandler(deps.Enrollment, errHandler).RegisterRoutes(r)
	analyticsapi.NewHandler(deps.Analytics, errHandler).RegisterRoutes(r)

	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			// FileServer redirects .../index.html to the directory, so the
			// redirect target from / is served explicitly.
			r.HandleFunc(indexPath, serveIndex(cfg.StaticDir, errHandler)).
				Methods(http.MethodGet, http.MethodHead)
			r.PathPrefix("/static/").Handler(
				http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))),
			).Methods(http.MethodGet, http.MethodHead)
		} else {
			log.Warn("static directory unavailable, /static is disabled", map[string]interface{}{
				"dir": cfg.StaticDir,
			})
		}
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errHandler.HandleHTTPError(w, req, apperrors.NewRouteNotFoundError(req.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errHandler.HandleHTTPError(w, req, apperrors.NewMethodNotAllowedError(req.Method, req.URL.Path))
	})

	return r
}

func serveIndex(dir string, errHandler *apperrors.ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		f, err := os.Open(filepath.Join(dir, "index.html"))
		if err != nil {
			errHandler.HandleHTTPError(w, req, apperrors.NewRouteNotFoundError(req.URL.Path))
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			errHandler.HandleHTTPError(w, req, apperrors.NewRouteNotFoundError(req.URL.Path))
			return
		}
		http.ServeContent(w, req, info.Name(), info.ModTime(), f)
	}
}
