package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/tidyloom/internal/chart"
	"github.com/KaramelBytes/tidyloom/internal/session"
	"github.com/KaramelBytes/tidyloom/internal/web"
	"github.com/spf13/cobra"
)

var serveAddr string

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Clean and Analyze dashboards",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		if cmd.Flags().Changed("addr") {
			c.ListenAddr = serveAddr
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger, closeLog, err := newLogger(c)
		if err != nil {
			if logger == nil {
				return err
			}
			logger.Warn("logging degraded", "error", err)
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sessions := session.NewManager(c.SessionTTL(), logger)
		defer sessions.CloseAll()
		go sessions.ReapIdle(ctx, time.Minute)

		h := web.NewHandler(sessions, web.Options{
			MaxUploadBytes: c.MaxUploadBytes(),
			PreviewRows:    c.PreviewRows,
			Chart: chart.Options{
				Width:              c.ChartWidth,
				Height:             c.ChartHeight,
				BarMaxCategories:   c.BarMaxCategories,
				PieMaxCategories:   c.PieMaxCategories,
				HeatmapWarnColumns: c.HeatmapWarnColumns,
			},
		}, logger)
		srv := &http.Server{
			Addr:              c.ListenAddr,
			Handler:           web.NewRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("dashboards listening", "addr", c.ListenAddr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("listen: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}
