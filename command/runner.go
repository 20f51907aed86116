package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	contentcache "github.com/djdv/go-contentcache"
)

type (
	// Source provides the content stored by PUT commands.
	Source interface {
		Read(key string) ([]byte, error)
	}
	// Runner replays commands against a cache.
	// Constructed by [NewRunner].
	Runner struct {
		cache  *contentcache.Cache
		source Source
		clock  func() time.Time
		log    *slog.Logger
	}
	// RunnerOption configures a [Runner].
	RunnerOption func(*Runner)
	// Summary counts what a [Runner.Run] call did.
	Summary struct {
		Lines, Puts, Gets,
		Hits, Misses,
		SourceErrors, StoreWarnings int
	}
)

// WithClock sets the time source used for every command.
// Defaults to [time.Now].
func WithClock(clock func() time.Time) RunnerOption {
	return func(r *Runner) { r.clock = clock }
}

// WithRunnerLogger sets the logger for per-command diagnostics.
func WithRunnerLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// NewRunner creates a [Runner] that stores content read from source in cache.
func NewRunner(cache *contentcache.Cache, source Source, options ...RunnerOption) *Runner {
	r := &Runner{
		cache:  cache,
		source: source,
		clock:  time.Now,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Run executes each line of input in order.
// Unreadable PUT content and store failures are logged and counted;
// a malformed line stops the run with an error wrapping [ErrSyntax].
func (r *Runner) Run(ctx context.Context, input io.Reader) (Summary, error) {
	var (
		summary Summary
		scanner = bufio.NewScanner(input)
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, err := Parse(line)
		if err != nil {
			return summary, fmt.Errorf("line %d: %w", lineNo, err)
		}
		summary.Lines++
		r.execute(cmd, &summary)
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("reading commands: %w", err)
	}
	return summary, nil
}

func (r *Runner) execute(cmd Command, summary *Summary) {
	var (
		now = r.clock()
		err error
	)
	switch cmd.Op {
	case Put:
		summary.Puts++
		content, readErr := r.source.Read(cmd.Key)
		if readErr != nil {
			summary.SourceErrors++
			r.log.Warn("skipping put",
				slog.String("key", cmd.Key),
				slog.Any("error", readErr),
			)
			return
		}
		err = r.cache.Put(cmd.Key, content, cmd.TTL, now)
	case Get:
		summary.Gets++
		var hit bool
		_, hit, err = r.cache.Get(cmd.Key, now)
		if hit {
			summary.Hits++
		} else {
			summary.Misses++
			r.log.Debug("miss", slog.String("key", cmd.Key))
		}
	}
	if err == nil {
		return
	}
	if errors.Is(err, contentcache.ErrContentStore) {
		summary.StoreWarnings++
		return // Already logged by the cache.
	}
	r.log.Error("command failed",
		slog.String("command", cmd.String()),
		slog.Any("error", err),
	)
}
