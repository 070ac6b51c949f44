package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "jecna-client/dev/env"
	"jecna-client/pkg/gradestore"
)

func createGradesDb(ctx context.Context, filename string) error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", filename))
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := gradestore.OpenDB(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return gradestore.NewStore(db).Migrate(ctx)
}

const liveTestTemplate = `{
    // credentials of a real account, used by the live portal tests
    base_url: "https://www.spsejecna.cz",
    username: "",
    password: "",
    // optional, a subject that must exist on the grades page
    subject: "Matematika",
}
`

func createLiveTestConfig() error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", devenv.JecnaTestConfigFile))
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("live test config already exists at", path)
		return nil
	}
	// the template is written next to the config, an empty username would
	// fail the live tests instead of skipping them
	templatePath := path + ".template"
	fmt.Println("writing live test config template to", templatePath)
	return os.WriteFile(templatePath, []byte(liveTestTemplate), 0600)
}

func PrintConfigLocations() {
	slog.Info("tests against the real portal are skipped until dev/.state/" + devenv.JecnaTestConfigFile + " exists, copy the template next to it and fill in your credentials.")
}
