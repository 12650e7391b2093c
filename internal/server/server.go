package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/configuration"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/middleware"
)

// Controller is anything that can mount routes on the router.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

type Options struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Pool          *pgxpool.Pool
	Controllers   []Controller
}

type HTTPServer struct {
	router *mux.Router
	logger *logrus.Logger
}

func New(options Options) *HTTPServer {
	router := mux.NewRouter()
	router.Use(
		middleware.WithLogger(options.Logger),
		middleware.WithPool(options.Pool),
		middleware.Recover(),
	)

	router.HandleFunc("/health", healthHandler(options.Pool)).Methods(http.MethodGet)

	for _, controller := range options.Controllers {
		controller.Register(router)
		options.Logger.WithField("controller", controller.Key()).Debug("registered controller")
	}

	return &HTTPServer{router: router, logger: options.Logger}
}

func (s *HTTPServer) Start(address string) error {
	srv := &http.Server{
		Addr:    address,
		Handler: s.router,
		// No WriteTimeout: the import endpoint holds a long-lived event
		// stream open.
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.WithField("address", address).Info("http server listening")
	return srv.ListenAndServe()
}

func healthHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
