package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	envDir      = "CONTENTCACHE_DIR"
	envLogLevel = "CONTENTCACHE_LOG_LEVEL"
	envMetrics  = "CONTENTCACHE_METRICS"
)

type config struct {
	commandFile string
	capacity    int
	dir         string
	metricsFile string
	logLevel    slog.Level
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func parseConfig(name string, args []string, output io.Writer) (config, error) {
	var (
		cfg   config
		level = getEnv(envLogLevel, "info")
		flags = flag.NewFlagSet(name, flag.ContinueOnError)
	)
	flags.SetOutput(output)
	flags.Usage = func() {
		fmt.Fprintf(output,
			"Usage: %s [flags] <command file> <cache size>\n", name)
		flags.PrintDefaults()
	}
	flags.StringVar(&cfg.dir, "dir", getEnv(envDir, "."),
		"directory holding the content files (env "+envDir+")")
	flags.StringVar(&cfg.metricsFile, "metrics", getEnv(envMetrics, ""),
		"write Prometheus metrics to this file on exit (env "+envMetrics+")")
	flags.StringVar(&level, "log-level", level,
		"debug, info, warn, or error (env "+envLogLevel+")")
	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return cfg, fmt.Errorf("expected 2 arguments but got %d", flags.NArg())
	}
	cfg.commandFile = flags.Arg(0)
	capacity, err := strconv.Atoi(flags.Arg(1))
	if err != nil {
		return cfg, fmt.Errorf("cache size: %w", err)
	}
	cfg.capacity = capacity
	if err := cfg.logLevel.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return cfg, fmt.Errorf("log level: %w", err)
	}
	return cfg, nil
}
