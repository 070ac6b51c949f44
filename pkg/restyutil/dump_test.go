package restyutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user/login" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		w.Header().Set("X-Test", "yes")
		w.Write([]byte("<html>grades</html>"))
	}))
	defer server.Close()

	output := &MemoryOutput{}
	client := resty.New().SetBaseURL(server.URL)
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	Dump(client, output)

	_, err := client.R().Get("/score/student")
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.R().
		SetFormData(map[string]string{"user": "novak", "pass": "heslo"}).
		Post("/user/login")
	if err != nil {
		t.Fatal(err)
	}

	messages := output.Messages()
	grades, ok := messages["0001-GET-score_student.txt"]
	require.True(t, ok, "%v", messages)
	require.Contains(t, grades, "<html>grades</html>")
	require.Contains(t, grades, "X-Test: yes")

	var login string
	for id, contents := range messages {
		if strings.HasSuffix(id, "-POST-user_login.txt") {
			login = contents
		}
	}
	require.NotEmpty(t, login)
	require.Contains(t, login, "user=novak")
	require.NotContains(t, login, "heslo")
	require.Contains(t, login, "302")
}

func TestFormatHeaders(t *testing.T) {
	require.Equal(t, "", formatHeaders(http.Header{}))
	require.Equal(
		t,
		"Accept: text/html\nSet-Cookie: a=1\nSet-Cookie: b=2",
		formatHeaders(http.Header{
			"Set-Cookie": {"a=1", "b=2"},
			"Accept":     {"text/html"},
		}),
	)
}
