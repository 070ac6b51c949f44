package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jecna-client/internal/components/chrono"
	"jecna-client/internal/components/telemetry"
	"jecna-client/pkg/gradestore"
	"jecna-client/pkg/jecna"
	"jecna-client/pkg/notify"
	"jecna-client/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var (
	watchInterval       time.Duration
	watchSchedule       string
	watchNotifyExisting bool
)

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Minute*30, "How often to check for new grades.")
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "A cron spec (ex. \"*/20 7-20 * * 1-5\") to check on instead of a fixed interval.")
	watchCmd.Flags().BoolVar(&watchNotifyExisting, "notify-existing", false, "Also mail grades that were on the page before the first check.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--interval <duration> | --schedule <cron spec>]",
	Short: "Periodically saves snapshots and mails new grades.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if watchInterval <= 0 {
			serviceutil.Fatal("invalid interval", fmt.Errorf("--interval must be positive, got %s", watchInterval))
		}
		cfg := readConfig()
		clock := newClock()

		otel, err := telemetry.SetupFromEnv(ctx, "jecna-watch")
		if err != nil {
			slog.Debug("telemetry is not configured", "err", err)
		} else {
			defer otel.Shutdown(context.Background())
			telemetry.InstrumentPerfStats(ctx)
		}

		store := openStore(ctx, cfg)
		client, auth := loggedInClient(ctx, cfg, clock, true)
		// a check that runs shortly after another reuses its page
		fetcher := jecna.NewCachedGrades(client, 2, time.Minute)

		var mailer *notify.Mailer
		if cfg.Smtp.Server != "" && cfg.NotifyEmail != "" {
			m := notify.NewMailer(cfg.Smtp)
			mailer = &m
		}

		w := watcher{
			fetcher: fetcher,
			store:   store,
			clock:   clock,
			mailer:  mailer,
			user:    auth.Username,
			to:      cfg.NotifyEmail,
		}
		if watchSchedule == "" {
			w.run(ctx, watchInterval, watchNotifyExisting)
			return
		}

		cron := chrono.NewStandardCron(telemetry.SlogAPI{}, clock.Location())
		defer cron.Stop()
		w.tick(ctx, watchNotifyExisting)
		err = cron.Cron(watchSchedule, func() {
			w.tick(ctx, true)
		})
		if err != nil {
			serviceutil.Fatal("failed to schedule checks", err)
		}
		<-ctx.Done()
		slog.Info("stopping watch")
	},
}

type watcher struct {
	fetcher jecna.GradesFetcher
	store   gradestore.Store
	clock   chrono.API
	mailer  *notify.Mailer
	user    string
	to      string
}

func (w watcher) tick(ctx context.Context, notifyUnseen bool) {
	unseen, err := takeSnapshot(ctx, w.fetcher, w.store, w.clock, w.user)
	if err != nil {
		slog.Error("failed to check grades", "err", err)
		return
	}
	for _, g := range unseen {
		slog.Info("new grade", "subject", g.Subject.Full, "partition", g.Partition.String(), "grade", g.Grade.String())
	}
	if !notifyUnseen || w.mailer == nil {
		return
	}
	err = w.mailer.SendGrades(ctx, w.to, unseen)
	if err != nil {
		slog.Error("failed to mail new grades", "err", err)
	}
}

func (w watcher) run(ctx context.Context, interval time.Duration, notifyExisting bool) {
	w.tick(ctx, notifyExisting)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.tick(ctx, true)
		case <-ctx.Done():
			slog.Info("stopping watch")
			return
		}
	}
}
