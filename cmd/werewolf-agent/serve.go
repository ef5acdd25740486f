package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MRamiBalles/werewolf-agent/internal/network"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/optimization"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the player HTTP API and the observer stream",
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "listen port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		d.cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d.logger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(d.logger, d.metrics, d.tuning)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, d.events)

	mux := network.NewRouter(
		network.NewPlayerAPI(d.svc, d.logger),
		network.NewReplayHandler(d.events, d.repo, d.logger),
		hub,
		d.metrics,
	)
	srv := &http.Server{
		Addr:              d.cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info(fmt.Sprintf("Agent listening on %s (llm=%v, strategy=%s)", srv.Addr, d.svc.LLMEnabled(), d.cfg.Agent.Strategy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	d.logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		d.logger.Error("shutdown: " + err.Error())
	}

	stats := d.regimes.Stats()
	d.logger.Info(fmt.Sprintf("Regime cache: %d entries, %d hits, %d misses", stats.Size, stats.Hits, stats.Misses))
	rec := optimization.Analyze(d.metrics.Snapshot())
	for _, note := range rec.Notes {
		d.logger.Warn("tuning: " + note)
	}
	return nil
}
