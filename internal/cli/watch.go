package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nutcparking/parkspace/internal/filter"
	"github.com/nutcparking/parkspace/internal/logger"
	"github.com/nutcparking/parkspace/internal/lot"
	"github.com/nutcparking/parkspace/internal/scraper"
	"github.com/nutcparking/parkspace/internal/storage"
	"github.com/nutcparking/parkspace/internal/worker"
)

type watchOptions struct {
	filter   filterFlags
	interval time.Duration
	count    int
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh periodically and print what changed",
		Long: `Print the current lots, then refresh on an interval and print every
change in free spaces or capacity, and lots that appear or disappear.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flt, err := opts.filter.build()
			if err != nil {
				return err
			}
			interval := opts.interval
			if interval <= 0 {
				interval = root.cfg.Refresh.Interval
			}

			sc, err := root.newScraper()
			if err != nil {
				return err
			}
			store := storage.New(scraper.UserMessage)
			refresher := worker.New(sc, store,
				worker.WithInterval(interval),
				worker.WithLogger(root.log.Component("worker")),
			)

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			return watch(ctx, store, refresher, flt, root.out, root.output, opts.count)
		},
	}

	opts.filter.bind(cmd)
	cmd.Flags().DurationVarP(&opts.interval, "interval", "i", 0, "Time between refreshes (default from config, 60s)")
	cmd.Flags().IntVar(&opts.count, "count", 0, "Stop after this many snapshots (0 = run until interrupted)")

	return cmd
}

// signalContext is canceled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

type runner interface {
	Run(ctx context.Context) error
}

// startRunner runs r in the background. The returned function cancels it and
// waits for it to return.
func startRunner(ctx context.Context, r runner) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// watch prints the first snapshot in full and then the changes between
// consecutive snapshots, until ctx is done or count snapshots were seen.
// Failed refreshes are logged; the previous lots stay the baseline.
func watch(ctx context.Context, store *storage.Store, r runner, flt *filter.Filter, out io.Writer, format OutputFormat, count int) error {
	states, unsubscribe := store.Subscribe()
	defer unsubscribe()

	stop := startRunner(ctx, r)
	defer stop()

	var (
		previous  []lot.Lot
		updatedAt time.Time
		failedAt  time.Time
		seen      int
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-states:
			if !ok {
				return nil
			}

			if st.Err != nil && !st.FailedAt.Equal(failedAt) {
				failedAt = st.FailedAt
				logger.Warn("refresh failed", logger.Fields{"message": st.Message, "stale": st.Stale()})
			}
			if !st.Ready() || st.UpdatedAt.Equal(updatedAt) {
				continue
			}

			current := flt.Apply(st.Lots)
			if seen == 0 {
				result := &LotsResult{CheckedAt: st.UpdatedAt, Lots: current, Count: len(current)}
				if err := WriteLots(out, result, format, false); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			} else if changes := lot.Diff(previous, current); len(changes) > 0 {
				result := &ChangesResult{CheckedAt: st.UpdatedAt, Changes: changes}
				if err := WriteChanges(out, result, format); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}

			previous, updatedAt = current, st.UpdatedAt
			seen++
			if count > 0 && seen >= count {
				return nil
			}
		}
	}
}
