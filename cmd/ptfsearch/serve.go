package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/readex-eu/readex-ptf-sub000/internal/history"
	"github.com/readex-eu/readex-ptf-sub000/internal/metrics"
	"github.com/readex-eu/readex-ptf-sub000/internal/searchd"
	"github.com/readex-eu/readex-ptf-sub000/pkg/config"
	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
)

var (
	serveConfigPath string
	serveGRPCAddr   string
	serveHTTPAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search sessions over gRPC and HTTP",
	RunE:  serve,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Server config path (optional)")
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", "", "Override the gRPC listen address")
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "", "Override the HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadServer(serveConfigPath)
	if err != nil {
		return err
	}
	if serveGRPCAddr != "" {
		cfg.Server.GRPCAddr = serveGRPCAddr
	}
	if serveHTTPAddr != "" {
		cfg.Server.HTTPAddr = serveHTTPAddr
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	var hist history.Source
	if cfg.History.Path != "" {
		src, err := history.LoadFile(cfg.History.Path)
		if err != nil {
			return err
		}
		hist = src
		logger.Info("tuning history loaded", "path", cfg.History.Path, "signatures", len(src.Signatures()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := searchd.NewSessionStore(hist)
	grpcServer, err := searchd.NewServer(cfg.Server, searchd.NewService(store))
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           searchd.NewHTTPServer(store, prometheus.DefaultGatherer).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("gRPC server listening", "addr", grpcServer.Address())
		if err := grpcServer.Start(); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested", "open_sessions", store.Len())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grpcServer.GracefulTimeout())
	defer cancel()

	grpcServer.Shutdown(shutdownCtx)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	store.CloseAll()
	return nil
}
