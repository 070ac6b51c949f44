package jecna

import (
	"errors"
	"os"
	"testing"

	devenv "jecna-client/dev/env"
	"jecna-client/internal/components/chrono"
	"jecna-client/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestLivePortal(t *testing.T) {
	config, err := devenv.GetStateConfig[devenv.JecnaTestConfig](devenv.JecnaTestConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		t.Skip("no live portal credentials in dev/.state")
	}
	if err != nil {
		t.Fatal(err)
	}

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewClient(ClientOptions{
		BaseUrl:          config.BaseUrl,
		BypassCloudflare: true,
	}, telemetry.SlogAPI{}, clock)
	if err != nil {
		t.Fatal(err)
	}

	ctx := testContext(t)
	err = client.Login(ctx, config.Username, config.Password)
	if err != nil {
		t.Fatal(err)
	}
	page, err := client.FetchGrades(ctx, CurrentSchoolYear(clock), CurrentHalf(clock))
	if err != nil {
		t.Fatal(err)
	}
	require.NotEmpty(t, page.SubjectNames())

	if config.Subject != "" {
		subject, err := page.Lookup(config.Subject)
		if err != nil {
			t.Fatal(err)
		}
		t.Log(subject.Name, subject.Grades.Len())
	}
}
