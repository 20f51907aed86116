// Command contentcache replays a file of PUT/GET commands
// against a content cache backed by a directory.
//
//	contentcache [flags] <command file> <cache size>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	contentcache "github.com/djdv/go-contentcache"
	"github.com/djdv/go-contentcache/command"
	"github.com/djdv/go-contentcache/filestore"
	"github.com/djdv/go-contentcache/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := parseConfig(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.logLevel,
	}))
	if err := run(ctx, cfg, log); err != nil {
		log.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log *slog.Logger) (err error) {
	store, err := filestore.New(cfg.dir)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, store.Close()) }()
	registry := prom.NewRegistry()
	cache, err := contentcache.New(cfg.capacity,
		contentcache.WithStore(store),
		contentcache.WithLogger(log),
		contentcache.WithMetrics(prometheus.NewMetrics(registry)),
	)
	if err != nil {
		return err
	}
	commands, err := os.Open(cfg.commandFile)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, commands.Close()) }()
	runner := command.NewRunner(cache, store, command.WithRunnerLogger(log))
	summary, err := runner.Run(ctx, commands)
	stats := cache.Stats()
	log.Info("finished",
		slog.Int("commands", summary.Lines),
		slog.Int("hits", summary.Hits),
		slog.Int("misses", summary.Misses),
		slog.Int("source_errors", summary.SourceErrors),
		slog.Int("store_warnings", summary.StoreWarnings),
		slog.Uint64("evictions", stats.TotalEvictions()),
		slog.Int("pending", cache.PendingLen()),
		slog.Int("retrieved", cache.RetrievedLen()),
	)
	if cfg.metricsFile != "" {
		err = errors.Join(err, prom.WriteToTextfile(cfg.metricsFile, registry))
	}
	return err
}
