package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"testing"
	"time"

	"jecna-client/pkg/gradestore"
	"jecna-client/pkg/jecna"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testGrades = []gradestore.UnseenGrade{
	{
		Subject:   jecna.Name{Full: "Matematika", Short: "M"},
		Partition: jecna.Undivided(),
		Grade: jecna.Grade{
			Value:       '1',
			Description: "Písemka",
			ReceiveDate: time.Date(2022, time.March, 12, 0, 0, 0, 0, time.UTC),
			Teacher:     &jecna.Name{Full: "Jan Novák", Short: "Nov"},
			ID:          101,
		},
	},
	{
		Subject:   jecna.Name{Full: "Programové vybavení", Short: "PV"},
		Partition: jecna.PartOf("Teorie"),
		Grade:     jecna.Grade{Value: '3', Small: true, ID: 201},
	},
}

func TestGradesDigest(t *testing.T) {
	mail := GradesDigest("bot@example.com", "student@example.com", testGrades)
	require.Equal(t, "Ječná <bot@example.com>", mail.From)
	require.Equal(t, []string{"student@example.com"}, mail.To)
	require.Equal(t, "Nové známky (2)", mail.Subject)
	require.Equal(
		t,
		"Matematika: 1 - Písemka, 12.03.2022, Jan Novák\n"+
			"Programové vybavení / Teorie: 3 (malá)\n",
		string(mail.Text),
	)

	single := GradesDigest("bot@example.com", "student@example.com", testGrades[:1])
	require.Equal(t, "Nová známka z Matematika", single.Subject)
}

func TestNewMailerRequiresServer(t *testing.T) {
	require.Panics(t, func() {
		NewMailer(SmtpConfig{EmailAddress: "bot@example.com"})
	})
}

type smtpServer struct {
	host     string
	smtpPort int
	httpPort int
}

func setupSmtp(t *testing.T) smtpServer {
	testcontainers.SkipIfProviderIsNotHealthy(t)

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "haravich/fake-smtp-server",
				ExposedPorts: []string{"1025/tcp", "1080/tcp"},
				WaitingFor: wait.ForAll(
					wait.ForLog("smtp://0.0.0.0:1025"),
					wait.ForListeningPort("1025/tcp"),
				),
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		err := container.Terminate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	smtpPort, err := container.MappedPort(ctx, "1025/tcp")
	if err != nil {
		t.Fatal(err)
	}
	httpPort, err := container.MappedPort(ctx, "1080/tcp")
	if err != nil {
		t.Fatal(err)
	}
	return smtpServer{
		host:     host,
		smtpPort: smtpPort.Int(),
		httpPort: httpPort.Int(),
	}
}

func (s smtpServer) message(t *testing.T, n int) string {
	res, err := resty.New().R().
		Get(fmt.Sprintf("http://%s:%d/messages/%d.plain", s.host, s.httpPort, n))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode() != http.StatusOK {
		return ""
	}
	return res.String()
}

func TestSendGrades(t *testing.T) {
	server := setupSmtp(t)
	mailer := NewMailer(SmtpConfig{
		Server:       server.host,
		Port:         server.smtpPort,
		EmailAddress: "bot@example.com",
		Password:     "default",
	})

	err := mailer.SendGrades(context.Background(), "student@example.com", nil)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, server.message(t, 1))

	err = mailer.SendGrades(context.Background(), "student@example.com", testGrades)
	if err != nil {
		t.Fatal(err)
	}
	body := server.message(t, 1)
	require.Contains(t, body, "Matematika: 1")
	require.Contains(t, body, "12.03.2022")
	require.Contains(t, body, "3 (mal")
}
