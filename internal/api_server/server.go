package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dcsim/rack-planner/internal/config"
	handlers "github.com/dcsim/rack-planner/internal/handlers/v1alpha1"
	"github.com/dcsim/rack-planner/internal/service"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/pkg/metrics"
	"github.com/dcsim/rack-planner/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
	registry prometheus.Registerer
}

// New returns a new instance of a rack-planner server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
		registry: prometheus.DefaultRegisterer,
	}
}

type HealthReply struct {
	Status string `json:"status"`
}

// NewRouter wires every service on top of store.
func NewRouter(cfg *config.Config, store store.Store, metricMiddleware *metrics.Middleware) http.Handler {
	router := chi.NewRouter()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Service.CorsOrigins,
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, HealthReply{Status: "ok"})
	})

	servers := service.NewServerService(store)
	h := handlers.NewServiceHandler(
		service.NewUserService(store),
		service.NewWorkspaceService(store),
		service.NewRackService(store),
		servers,
		service.NewComponentService(store, servers),
		service.NewNetworkService(store),
	)
	h.RegisterApi(router)

	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	metricMiddleware := metrics.NewMiddleware("api_server")
	if err := metricMiddleware.Register(s.registry); err != nil {
		return err
	}

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: NewRouter(s.cfg, s.store, metricMiddleware)}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
