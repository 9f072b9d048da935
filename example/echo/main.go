package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Zereker/resocket/internal/echopeer"
	"github.com/Zereker/resocket/internal/logging"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9000", "listen address")
	flag.Parse()

	cfg := logging.DefaultConfig()
	logging.ApplyEnv(&cfg)
	logger, closer, err := logging.New(cfg)
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	server, err := echopeer.New(*addr, echopeer.LoggerOption(logger))
	if err != nil {
		logger.Error("failed to create peer", "error", err)
		return
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down peer...")
		cancel()
	}()

	if err := server.Serve(ctx, echopeer.Echo); err != nil && err != context.Canceled {
		logger.Error("peer error", "error", err)
	}
	server.Close()
	server.Wait()
}
