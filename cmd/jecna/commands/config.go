package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"jecna-client/internal/components/chrono"
	"jecna-client/internal/components/telemetry"
	"jecna-client/pkg/configutil"
	"jecna-client/pkg/gradestore"
	"jecna-client/pkg/jecna"
	"jecna-client/pkg/notify"
	"jecna-client/pkg/restyutil"
	"jecna-client/pkg/serviceutil"
)

const configFile = "jecna.json5"

type Config struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// AuthFile holds credentials saved by "jecna login --save".
	AuthFile string            `json:"auth_file"`
	Database gradestore.Config `json:"database"`
	Smtp     notify.SmtpConfig `json:"smtp"`
	// NotifyEmail receives digests of new grades from "jecna watch".
	NotifyEmail string `json:"notify_email"`
}

func defaultAuthFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".jecna-auth"
	}
	return filepath.Join(dir, "jecna", "auth")
}

func readConfig() Config {
	cfg, err := configutil.ReadRecursively[Config](configFile)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "name", configFile)
		err = nil
	}
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.AuthFile == "" {
		cfg.AuthFile = defaultAuthFile()
	}
	if cfg.Database.File == "" && cfg.Database.Url == "" {
		cfg.Database.File = "<dev_state>/grades.db"
	}
	return cfg
}

// credentials prefers the flags, then the config file and finally the saved
// auth file.
func credentials(cfg Config, username, password string) (jecna.Auth, error) {
	if username != "" && password != "" {
		return jecna.Auth{Username: username, Password: password}, nil
	}
	if cfg.Username != "" && cfg.Password != "" {
		return jecna.Auth{Username: cfg.Username, Password: cfg.Password}, nil
	}
	contents, err := os.ReadFile(cfg.AuthFile)
	if os.IsNotExist(err) {
		return jecna.Auth{}, fmt.Errorf("no credentials, set them in %s or run 'jecna login --save'", configFile)
	}
	if err != nil {
		return jecna.Auth{}, err
	}
	return jecna.DecryptAuth(contents)
}

func saveAuth(path string, auth jecna.Auth) error {
	err := os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		return err
	}
	return os.WriteFile(path, auth.Encrypt(), 0600)
}

func newClock() chrono.API {
	clock, err := chrono.NewStandardImpl()
	if err != nil {
		serviceutil.Fatal("failed to load timezone", err)
	}
	return clock
}

func newClient(cfg Config, clock chrono.API, autoLogin bool) *jecna.Client {
	options := jecna.ClientOptions{
		BaseUrl:          cfg.BaseUrl,
		AutoLogin:        autoLogin,
		BypassCloudflare: true,
	}
	if dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			serviceutil.Fatal("failed to create dump directory", err)
		}
		options.Dump = output
	}
	client, err := jecna.NewClient(options, telemetry.SlogAPI{}, clock)
	if err != nil {
		serviceutil.Fatal("failed to create client", err)
	}
	return client
}

// loggedInClient returns a client with an established session or exits.
func loggedInClient(ctx context.Context, cfg Config, clock chrono.API, autoLogin bool) (*jecna.Client, jecna.Auth) {
	auth, err := credentials(cfg, "", "")
	if err != nil {
		serviceutil.Fatal("failed to get credentials", err)
	}
	client := newClient(cfg, clock, autoLogin)
	err = client.LoginAuth(ctx, auth)
	if err != nil {
		serviceutil.Fatal("failed to login", err)
	}
	return client, auth
}

func openStore(ctx context.Context, cfg Config) gradestore.Store {
	database, err := cfg.Database.OpenDB()
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	store := gradestore.NewStore(database)
	err = store.Migrate(ctx)
	if err != nil {
		serviceutil.Fatal("failed to migrate database", err)
	}
	return store
}
