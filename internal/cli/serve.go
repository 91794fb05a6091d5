package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/rulestore/internal/httpapi"
	"github.com/mesh-intelligence/rulestore/internal/logger"
	"github.com/mesh-intelligence/rulestore/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rules HTTP API",
		Long:  "Serve the rules API under /api/rules, with /healthz and /metrics, until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = a.config.GetString(cfgKeyListenAddr)
			}
			return a.serve(cmd, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default: listen_addr from config)")
	return cmd
}

func (a *app) serve(cmd *cobra.Command, listen string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := a.logger(cmd.ErrOrStderr())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := a.openStore(cmd, metrics.New(reg))
	if err != nil {
		return err
	}
	defer store.Detach()

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(store, httpapi.Options{
		Logger:   logger.Component(log, "http"),
		Gatherer: reg,
	})
	srv := &http.Server{
		Addr:              listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", listen).Str("db", store.Path()).Msg("serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return sysError(err)
	}
	return nil
}
