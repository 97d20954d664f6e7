// Command planserver serves the profit-sharing member directory with
// role-aware masking of every response.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kelseyhightower/envconfig"

	"github.com/zoobzio/shroud"
	"github.com/zoobzio/shroud/bson"
	"github.com/zoobzio/shroud/cbor"
	"github.com/zoobzio/shroud/internal/plan"
	"github.com/zoobzio/shroud/json"
	"github.com/zoobzio/shroud/msgpack"
	"github.com/zoobzio/shroud/shroudhttp"
	"github.com/zoobzio/shroud/xml"
	"github.com/zoobzio/shroud/yaml"
)

// config holds the server settings read from PLAN_* variables.
type config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer       string        `envconfig:"JWT_ISSUER"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text"`
}

func main() {
	var cfg config
	if err := envconfig.Process("plan", &cfg); err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := newLogger(cfg.LogFormat)

	maskCfg, err := shroud.LoadConfig()
	if err != nil {
		logger.Error("load masking config", slog.Any("error", err))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(cfg, maskCfg, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("plan server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}

func newLogger(format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newRouter(cfg config, maskCfg shroud.Config, logger *slog.Logger) http.Handler {
	authOpts := []shroudhttp.AuthOption{
		shroudhttp.WithRoleNames(maskCfg.RoleNames()),
		shroudhttp.WithLogger(logger),
	}
	if cfg.JWTIssuer != "" {
		authOpts = append(authOpts, shroudhttp.WithIssuer(cfg.JWTIssuer))
	}
	auth := shroudhttp.NewAuthenticator([]byte(cfg.JWTSecret), authOpts...)

	responder := shroudhttp.NewResponder(logger, []shroud.Codec{
		json.New(),
		xml.New(),
		yaml.New(),
		msgpack.New(),
		cbor.New(),
		bson.New(),
	}, shroud.WithConfig(maskCfg))

	directory := plan.NewDirectory()
	plan.Seed(directory)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(auth.Middleware)
	plan.NewHandler(directory, responder, logger).MountRoutes(r)
	return r
}
