package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// applyConfig sets the log level and rebuilds the package-level session
// manager from cfg.
func applyConfig(cfg *Config) {
	configureLogging(cfg.LogLevel)
	sessionManager = newSessionManager(cfg.SessionTTL, cfg.SecureCookies || cfg.tlsEnabled())
}

func newRouter(s *server) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(sessionManager.LoadAndSave)

	router.Get("/health", handleHealth)
	router.Get("/static/app.css", handleAppCSS)
	router.Get("/", s.handleRoot)
	router.Get("/login", s.handleLoginGet)
	router.Post("/login", s.handleLoginPost)
	router.Post("/logout", s.handleLogout)
	router.Get("/browse", s.handleBrowse)
	router.Get("/ui/node", s.handleUINode)
	router.Post("/ui/actions/{kind}", s.handleUIAction)

	api := humachi.New(router, huma.DefaultConfig("Resource Browser API", "1.0.0"))
	registerAPI(api, s.platform)

	return router
}

func runServer(ctx context.Context, cfg *Config) error {
	applyConfig(cfg)
	s := newServer(cfg)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      newRouter(s),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.tlsEnabled() {
		if err := ensureTLSCert(cfg.TLS.CertPath, cfg.TLS.KeyPath); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).WithField("upstream", cfg.upstream.String()).Info("resource browser listening")
		var err error
		if cfg.tlsEnabled() {
			err = srv.ListenAndServeTLS(cfg.TLS.CertPath, cfg.TLS.KeyPath)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown error")
		return err
	}
	log.Info("server stopped")
	return nil
}
