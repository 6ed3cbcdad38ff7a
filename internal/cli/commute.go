package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nutcparking/parkspace/internal/commute"
	"github.com/nutcparking/parkspace/internal/lot"
	"github.com/nutcparking/parkspace/internal/scraper"
	"github.com/nutcparking/parkspace/internal/storage"
	"github.com/nutcparking/parkspace/internal/worker"
)

type commuteOptions struct {
	name     string
	typ      string
	interval time.Duration
	count    int
	changes  bool
}

func newCommuteCmd(root *rootOptions) *cobra.Command {
	opts := &commuteOptions{}

	cmd := &cobra.Command{
		Use:   "commute",
		Short: "Follow the free spaces of one lot",
		Long: `Refresh on the commute interval (30s by default) and print the current
record of one lot, matched by its exact name. When the lot drops out of the
page, its last known record is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommute(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "lot", "l", "", "Exact lot name to follow (required)")
	cmd.Flags().StringVarP(&opts.typ, "type", "t", "", "Parking type when a name is used by both: motorcycle or car")
	cmd.Flags().DurationVarP(&opts.interval, "interval", "i", 0, "Time between refreshes (default from config, 30s)")
	cmd.Flags().IntVar(&opts.count, "count", 0, "Stop after this many updates (0 = run until interrupted)")
	cmd.Flags().BoolVar(&opts.changes, "changes-only", false, "Only print updates where the free spaces changed")

	_ = cmd.MarkFlagRequired("lot")

	return cmd
}

func runCommute(cmd *cobra.Command, root *rootOptions, opts *commuteOptions) error {
	name := strings.TrimSpace(opts.name)
	if name == "" {
		return fmt.Errorf("--lot is required")
	}

	var typ lot.Type
	if opts.typ != "" {
		var err error
		if typ, err = lot.ParseType(opts.typ); err != nil {
			return err
		}
	}

	interval := opts.interval
	if interval <= 0 {
		interval = root.cfg.Refresh.CommuteInterval
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

	tracker := commute.NewTracker(store, name, typ)
	return follow(ctx, tracker, refresher, root.out, root.output, opts.count, opts.changes)
}

// follow prints tracker updates until ctx is done or count updates were
// printed. It fails when the first successful snapshot does not hold the lot.
func follow(ctx context.Context, tracker *commute.Tracker, r runner, out io.Writer, format OutputFormat, count int, changesOnly bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := tracker.Follow(ctx)

	stop := startRunner(ctx, r)
	defer stop()

	var (
		printed int
		located bool
	)
	for u := range updates {
		if !located && u.Found {
			located = true
		}
		if !located && !u.Stale {
			return fmt.Errorf("%w: %s", commute.ErrLotNotFound, tracker.Name())
		}
		if changesOnly && !u.Changed {
			continue
		}

		if err := WriteUpdate(out, u, tracker.Name(), format); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		printed++
		if count > 0 && printed >= count {
			return nil
		}
	}
	return nil
}
