package commands

import (
	"context"
	"log/slog"

	"jecna-client/internal/components/chrono"
	"jecna-client/pkg/gradestore"
	"jecna-client/pkg/jecna"
	"jecna-client/pkg/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Saves the current subject averages to the grade history.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		clock := newClock()
		store := openStore(cmd.Context(), cfg)
		client, auth := loggedInClient(cmd.Context(), cfg, clock, false)

		_, err := takeSnapshot(cmd.Context(), client, store, clock, auth.Username)
		if err != nil {
			serviceutil.Fatal("failed to take snapshot", err)
		}
	},
}

// takeSnapshot fetches the current half and pushes its averages, it returns
// the grades that had not been seen before the push.
func takeSnapshot(
	ctx context.Context,
	fetcher jecna.GradesFetcher,
	store gradestore.Store,
	clock chrono.API,
	user string,
) ([]gradestore.UnseenGrade, error) {
	page, err := fetcher.FetchGrades(ctx, jecna.CurrentSchoolYear(clock), jecna.CurrentHalf(clock))
	if err != nil {
		return nil, err
	}
	unseen, err := store.UnseenGrades(ctx, user, page)
	if err != nil {
		return nil, err
	}
	req := gradestore.SnapshotFromPage(user, clock.Now(), page)
	err = store.Push(ctx, req)
	if err != nil {
		return nil, err
	}
	slog.Info(
		"saved snapshot",
		"user", user,
		"period", page.SchoolYear().String(),
		"subjects", len(req.Subjects),
		"new_grades", len(unseen),
	)
	return unseen, nil
}
