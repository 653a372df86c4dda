package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskboard/internal/config"
	"github.com/adanyl0v/taskboard/internal/delivery/http/v1"
)

// NewRouter builds the gin engine with every v1 route mounted under
// /api/v1.
func (a *App) NewRouter(svc *Services) *gin.Engine {
	if a.Config.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	handler := v1.New(
		a.Logger.With().Str("component", "http").Logger(),
		svc.Auth,
		svc.Sessions,
		svc.Users,
		svc.Tasks,
		svc.Reports,
		svc.Notices,
	)
	v1.RegisterRoutes(router.Group("/api/v1"), handler)
	return router
}

// ListenAndServeHTTP serves until ctx is cancelled and then shuts the
// server down within the configured timeout.
func (a *App) ListenAndServeHTTP(ctx context.Context, handler http.Handler) error {
	httpCfg := a.Config.HTTP
	server := &http.Server{
		Addr:         net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:      handler,
		ReadTimeout:  httpCfg.ReadTimeout,
		WriteTimeout: httpCfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.Logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info().
		Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}
	a.Logger.Info().Msg("shut down http server")
	return nil
}
