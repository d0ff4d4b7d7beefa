package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go-swapi/internal/handlers"
	"go-swapi/internal/logging"
	"go-swapi/internal/repo"
	"go-swapi/internal/services"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the people and planets query API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", a.cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", a.cfg.Server.Addr, err)
			}
			return a.serve(ctx, ln)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	return cmd
}

// serve runs the HTTP server on ln until ctx is done, then drains it
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	var (
		recorder services.WalkRecorder
		lister   services.WalkReader
	)
	if a.cfg.Database.URL != "" {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := repo.Open(openCtx, a.cfg.Database.URL)
		cancel()
		if err != nil {
			ln.Close()
			return fmt.Errorf("open walk log database: %w", err)
		}
		defer pool.Close()
		walks := repo.NewWalkRepo(pool)
		recorder, lister = walks, walks
		a.logger.Info().Msg("walk log enabled")
	}

	h := handlers.NewHandler(a.queryService(recorder), services.NewWalkService(lister), logging.Component(a.logger, "http"))

	gin.SetMode(gin.ReleaseMode)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition", handlers.RequestIDHeader},
	})

	server := &http.Server{
		Handler:           corsHandler.Handler(handlers.NewEngine(h)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info().Str("addr", ln.Addr().String()).Msg("go-swapi listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info().Msg("server exited")
	return nil
}
