package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nutcparking/parkspace/internal/logger"
	"github.com/nutcparking/parkspace/internal/metrics"
	"github.com/nutcparking/parkspace/internal/notifier"
	"github.com/nutcparking/parkspace/internal/scraper"
	"github.com/nutcparking/parkspace/internal/storage"
	"github.com/nutcparking/parkspace/internal/worker"
)

type notifyOptions struct {
	dryRun   bool
	channel  string
	follow   bool
	interval time.Duration
	limit    int
}

func newNotifyCmd(root *rootOptions) *cobra.Command {
	opts := &notifyOptions{}

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Post the motorcycle lots with free spaces",
		Long: `Fetch the status page and post a short summary of the motorcycle lots
that have free spaces, or that all of them are full.

Twitter credentials are read from TWITTER_API_KEY, TWITTER_API_SECRET,
TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET; Telegram from
TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID; or from the config file.
With --follow the command keeps refreshing and posts at most once per
notify cooldown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotify(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the message without posting")
	cmd.Flags().StringVar(&opts.channel, "channel", "", "Where to post: twitter or telegram (default from config)")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Keep refreshing and post on every new snapshot, subject to the cooldown")
	cmd.Flags().DurationVarP(&opts.interval, "interval", "i", 0, "Time between refreshes with --follow (default from config)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Number of lots named in the message (default from config, 4)")

	return cmd
}

// newNotifier returns the dry-run notifier, or the notifier for channel
// ("twitter" or "telegram"; empty uses the configured channel)
func (o *rootOptions) newNotifier(dryRun bool, channel string) (notifier.Notifier, error) {
	if dryRun {
		return notifier.NewDryRunNotifier(o.out), nil
	}
	if channel == "" {
		channel = o.cfg.Notify.Channel
	}

	switch channel {
	case "twitter":
		creds := o.cfg.Notify.Twitter
		if !creds.Complete() {
			return nil, errors.New("twitter credentials are not configured (set TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN, TWITTER_ACCESS_SECRET or use --dry-run)")
		}
		return notifier.NewTwitterNotifier(notifier.Credentials{
			APIKey:       creds.APIKey,
			APISecret:    creds.APISecret,
			AccessToken:  creds.AccessToken,
			AccessSecret: creds.AccessSecret,
		})
	case "telegram":
		tg := o.cfg.Notify.Telegram
		if !tg.Complete() {
			return nil, errors.New("telegram credentials are not configured (set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID or use --dry-run)")
		}
		return notifier.NewTelegramNotifier(tg.BotToken, tg.ChatID)
	}
	return nil, fmt.Errorf("unknown notification channel: %s (must be 'twitter' or 'telegram')", channel)
}

func runNotify(cmd *cobra.Command, root *rootOptions, opts *notifyOptions) error {
	n, err := root.newNotifier(opts.dryRun, opts.channel)
	if err != nil {
		return err
	}
	limit := opts.limit
	if limit <= 0 {
		limit = root.cfg.Notify.Limit
	}

	sc, err := root.newScraper()
	if err != nil {
		return err
	}

	if opts.follow {
		interval := opts.interval
		if interval <= 0 {
			interval = root.cfg.Refresh.Interval
		}
		store := storage.New(scraper.UserMessage)
		refresher := worker.New(sc, store,
			worker.WithInterval(interval),
			worker.WithLogger(root.log.Component("worker")),
		)

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		stopRefresher := startRunner(ctx, refresher)
		defer stopRefresher()

		notifyOnUpdates(ctx, store, notifier.NewThrottled(n, root.cfg.Notify.Cooldown), limit, nil)
		return nil
	}

	res, err := sc.Fetch(cmd.Context())
	if err != nil {
		var empty *scraper.EmptyResultError
		if errors.As(err, &empty) {
			fmt.Fprintln(root.out, scraper.UserMessage(err))
			return &exitError{code: ExitEmpty}
		}
		return fmt.Errorf("fetching lots: %w", err)
	}

	msg := notifier.Summarize(res.Lots, limit)
	if err := n.Notify(cmd.Context(), msg); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}

	logger.Info("notification sent", logger.Fields{
		"lots":    len(msg.Lots),
		"dry_run": opts.dryRun,
	})
	return nil
}

// notifyOnUpdates sends a summary for the current snapshot and for every
// newly published one until ctx is done. Throttled messages are dropped;
// failed ones are logged.
func notifyOnUpdates(ctx context.Context, store *storage.Store, n notifier.Notifier, limit int, m *metrics.Metrics) {
	states, unsubscribe := store.Subscribe()
	defer unsubscribe()

	var updatedAt time.Time
	handle := func(st storage.State) {
		if !st.Ready() || st.UpdatedAt.Equal(updatedAt) {
			return
		}
		updatedAt = st.UpdatedAt

		msg := notifier.Summarize(st.Lots, limit)
		err := n.Notify(ctx, msg)
		switch {
		case err == nil:
			m.ObserveNotification("sent")
			logger.Info("notification sent", logger.Fields{"lots": len(msg.Lots)})
		case errors.Is(err, notifier.ErrThrottled):
			m.ObserveNotification("throttled")
			logger.Debug("notification throttled", nil)
		default:
			m.ObserveNotification("failed")
			logger.Error("notification failed", nil, err)
		}
	}

	handle(store.Current())
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			handle(st)
		}
	}
}
