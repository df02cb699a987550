package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/unkani/unkani/pkg/account"
	"github.com/unkani/unkani/pkg/config"
	"github.com/unkani/unkani/pkg/ratelimit"
	"github.com/unkani/unkani/pkg/server/middleware"
	"github.com/unkani/unkani/pkg/server/store"
	"github.com/unkani/unkani/pkg/server/store/cache"
	gormstore "github.com/unkani/unkani/pkg/server/store/gorm"
)

// Stores groups the storage backends used by the endpoints
type Stores struct {
	Users     store.UsersStore
	Roles     store.RolesStore
	AppGroups store.AppGroupsStore
	ValueSets store.ValueSetsStore
	Health    store.HealthStore
}

// GormStores creates gorm backed stores. ValueSets are cached when the
// configured cache size is positive.
func GormStores(db *gorm.DB, cfg *config.Config) Stores {
	var valueSets store.ValueSetsStore = gormstore.NewValueSetsStore(db)
	if cfg.ValueSetCacheSize > 0 {
		valueSets = cache.NewValueSets(valueSets, cfg.ValueSetCacheSize, cfg.ValueSetCacheExpiry())
	}

	return Stores{
		Users:     gormstore.NewUsersStore(db),
		Roles:     gormstore.NewRolesStore(db),
		AppGroups: gormstore.NewAppGroupsStore(db),
		ValueSets: valueSets,
		Health:    gormstore.NewHealthStore(db),
	}
}

type Server struct {
	Config   *config.Config
	Router   *mux.Router
	Logger   zerolog.Logger
	Stores   Stores
	Accounts *account.Service
	Limiter  ratelimit.Limiter
	Redis    redis.Cmdable
	srv      *http.Server
}

func NewServer(
	cfg *config.Config,
	stores Stores,
	accounts *account.Service,
	limiter ratelimit.Limiter,
	logger zerolog.Logger,
) *Server {
	router := mux.NewRouter().UseEncodedPath()
	router.Use(middleware.Metrics, middleware.RequestLogger(logger))
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s := &Server{
		Config:   cfg,
		Router:   router,
		Logger:   logger,
		Stores:   stores,
		Accounts: accounts,
		Limiter:  limiter,
	}

	s.srv = &http.Server{
		Handler:      s.Handler(),
		Addr:         cfg.ListenAddress(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s
}

// Handler returns the router wrapped with access logging, CORS and panic recovery
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "If-Match", "If-None-Match"}),
		handlers.ExposedHeaders([]string{
			"ETag", "Location", middleware.RequestIDHeader,
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
		}),
	)
	return handlers.LoggingHandler(os.Stdout,
		handlers.RecoveryHandler(handlers.PrintRecoveryStack(s.Config.LogLevel == "debug"))(
			cors(s.Router),
		),
	)
}

// TrustedProxy reports whether ip may set X-Forwarded-For
func (s *Server) TrustedProxy(ip string) bool {
	return s.Config.IsTrustedProxy(ip)
}

func (s *Server) Start() error {
	s.Logger.Info().Str("address", s.srv.Addr).Msg("Listening")
	return s.serve(s.srv.ListenAndServe())
}

// StartWithListener serves on an existing listener
func (s *Server) StartWithListener(l net.Listener) error {
	s.Logger.Info().Str("address", l.Addr().String()).Msg("Listening")
	return s.serve(s.srv.Serve(l))
}

func (s *Server) serve(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for active requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Version is reported by the status endpoint. Set at build time with
// -ldflags "-X github.com/unkani/unkani/pkg/server.Version=..."
var Version = "0.1.0"
