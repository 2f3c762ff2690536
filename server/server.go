package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/aleph-zero/abacus/api"
	"github.com/aleph-zero/abacus/service/identity"
	"github.com/aleph-zero/abacus/service/journal"
	"github.com/aleph-zero/abacus/service/membership"
	"github.com/aleph-zero/abacus/service/session"
	"github.com/aleph-zero/abacus/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/riandyrn/otelchi"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serviceName    = "abacus"
	serviceVersion = "0.0.1"
)

var collectorURL = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

/* *** Server Config *** */

type Config struct {
	Address       string
	Port          uint16
	ClusterConfig *ClusterConfig
	SessionConfig *session.Config
}

type Option func(*Config)

func NewConfig(options ...Option) *Config {
	cfg := &Config{}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

func WithAddress(address string) Option {
	return func(c *Config) {
		c.Address = address
	}
}

func WithPort(port uint16) Option {
	return func(c *Config) {
		c.Port = port
	}
}

func WithClusterConfig(clusterConfig *ClusterConfig) Option {
	return func(c *Config) {
		c.ClusterConfig = clusterConfig
	}
}

func WithSessionConfig(sessionConfig *session.Config) Option {
	return func(c *Config) {
		c.SessionConfig = sessionConfig
	}
}

/* *** Cluster Config *** */

type ClusterConfig struct {
	Enabled              bool
	NodeName             string
	MembershipListenAddr string
	MembershipListenPort uint16
	MembershipJoinAddrs  []string
}

type ClusterOption func(*ClusterConfig)

func NewClusterConfig(options ...ClusterOption) *ClusterConfig {
	cfg := &ClusterConfig{}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

func WithClusterEnabled(enabled bool) ClusterOption {
	return func(c *ClusterConfig) {
		c.Enabled = enabled
	}
}

func WithNodeName(nodeName string) ClusterOption {
	return func(c *ClusterConfig) {
		c.NodeName = nodeName
	}
}

func WithMembershipListenAddr(membershipListenAddr string) ClusterOption {
	return func(c *ClusterConfig) {
		c.MembershipListenAddr = membershipListenAddr
	}
}

func WithMembershipListenPort(membershipListenPort uint16) ClusterOption {
	return func(c *ClusterConfig) {
		c.MembershipListenPort = membershipListenPort
	}
}

func WithMembershipJoinAddrs(membershipJoinAddrs []string) ClusterOption {
	return func(c *ClusterConfig) {
		c.MembershipJoinAddrs = membershipJoinAddrs
	}
}

func Bootstrap(config *Config) {
	ctx, shutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdown()

	logger := httplog.NewLogger(serviceName, httplog.Options{
		LogLevel:         slog.LevelInfo,
		MessageFieldName: "msg",
		JSON:             true,
		Concise:          true,
		RequestHeaders:   false,
		ResponseHeaders:  false,
	})

	logger.InfoContext(ctx, "Bootstrapping server...", "config", config)

	/* *** Initialize Opentelemetry *** */
	shutdown, err := telemetry.New(serviceName, serviceVersion, collectorURL)
	if err != nil {
		logger.ErrorContext(ctx, "Error initializing telemetry", "err", err)
		shutdown = func() {}
	}
	defer shutdown()

	srv := http.Server{
		Addr: fmt.Sprintf("%s:%d", config.Address, config.Port),
	}

	/* *** Initialize services and handlers *** */
	journalSvc, err := journal.NewService()
	if err != nil {
		logger.ErrorContext(ctx, "Error opening journal", "err", err)
		os.Exit(1)
	}
	defer journalSvc.Close()

	sessionSvc := session.NewService(config.SessionConfig, journalSvc)

	router := NewRouter(sessionSvc, identity.NewService(
		config.ClusterConfig.NodeName, config.Address, config.Port, sessionSvc.Count))
	router.Use(httplog.RequestLogger(logger))

	if config.ClusterConfig.Enabled {
		svc, err := membership.NewService(membership.NewMember(
			config.ClusterConfig.NodeName,
			config.ClusterConfig.MembershipListenAddr,
			config.ClusterConfig.MembershipListenPort),
			config.ClusterConfig.MembershipJoinAddrs)
		if err != nil {
			logger.ErrorContext(ctx, "Error creating membership service", "err", err)
			os.Exit(1)
		}
		defer svc.Leave()

		sessionSvc.OnCountChange(func(count int) {
			if err := svc.SetSessionCount(count); err != nil {
				logger.Error("Error publishing session count", "err", err)
			}
		})
		handler := api.NewMembershipHandler(svc)
		router.Get("/membership", handler.GetMembership)
	}

	srv.Handler = router
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Error starting server", "err", err)
		}
		logger.InfoContext(ctx, "Server stopped accepting connections")
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-sig

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorContext(ctx, "Error shutting down server", "err", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Server shutdown complete")
}

// NewRouter builds the routes shared by every node: heartbeat, identity and
// the session API.
func NewRouter(sessionSvc session.Service, identitySvc identity.Service) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Heartbeat("/heartbeat"))
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))
	router.Use(middleware.RequestID)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	{
		handler := api.NewIdentityHandler(identitySvc)
		router.Get("/identity", handler.GetIdentity)
	}
	{
		handler := api.NewSessionHandler(sessionSvc)
		router.Mount("/sessions", handler.Routes())
	}
	return router
}
