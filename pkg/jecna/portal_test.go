package jecna

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
)

const fakeToken3 = "c2f1a7e0"

// fakePortal imitates the login flow and the grades page of the portal.
type fakePortal struct {
	username string
	password string

	loginPage  []byte
	gradesPage []byte

	mutex       sync.Mutex
	nextSession int
	sessions    map[string]bool
	logins      int
	gradeQuery  url.Values
}

func newFakePortal(t *testing.T) (*fakePortal, *httptest.Server) {
	t.Helper()
	loginPage, err := os.ReadFile("testdata/login.html")
	if err != nil {
		t.Fatal(err)
	}
	portal := &fakePortal{
		username:   "novak",
		password:   "heslo",
		loginPage:  loginPage,
		gradesPage: readGradesFixture(t),
		sessions:   map[string]bool{},
	}
	server := httptest.NewServer(portal.handler())
	t.Cleanup(server.Close)
	return portal, server
}

// expireSessions logs out every session, like the portal does after a while.
func (p *fakePortal) expireSessions() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for id := range p.sessions {
		p.sessions[id] = false
	}
}

func (p *fakePortal) loginCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.logins
}

func (p *fakePortal) lastGradeQuery() url.Values {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.gradeQuery
}

func (p *fakePortal) session(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		if _, ok := p.sessions[cookie.Value]; ok {
			return cookie.Value
		}
	}
	p.nextSession++
	id := fmt.Sprintf("session-%d", p.nextSession)
	p.sessions[id] = false
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: id, Path: "/"})
	return id
}

func (p *fakePortal) loggedIn(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return false
	}
	return p.sessions[cookie.Value]
}

func (p *fakePortal) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		p.mutex.Lock()
		defer p.mutex.Unlock()
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		p.session(w, r)
		if p.loggedIn(r) {
			fmt.Fprint(w, `<html><body><a href="/user/logout">Odhlásit</a></body></html>`)
			return
		}
		w.Write(p.loginPage)
	})

	mux.HandleFunc("/user/login", func(w http.ResponseWriter, r *http.Request) {
		p.mutex.Lock()
		defer p.mutex.Unlock()
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := p.session(w, r)
		role, err := r.Cookie("WTDGUID")
		if err != nil || role.Value != "10" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostFormValue("token3") != fakeToken3 ||
			r.PostFormValue("user") != p.username ||
			r.PostFormValue("pass") != p.password {
			w.Write(p.loginPage)
			return
		}
		p.sessions[id] = true
		p.logins++
		http.Redirect(w, r, "/", http.StatusFound)
	})

	mux.HandleFunc("/user/logout", func(w http.ResponseWriter, r *http.Request) {
		p.mutex.Lock()
		defer p.mutex.Unlock()
		cookie, err := r.Cookie(SessionCookieName)
		if err == nil {
			delete(p.sessions, cookie.Value)
		}
		http.Redirect(w, r, "/", http.StatusFound)
	})

	requireLogin := func(handler http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p.mutex.Lock()
			defer p.mutex.Unlock()
			if !p.loggedIn(r) {
				http.Redirect(w, r, "/user/need-login?returnUrl="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			handler(w, r)
		}
	}

	mux.HandleFunc("/user-student/record-list", requireLogin(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>record list</body></html>`)
	}))

	mux.HandleFunc("/score/student", requireLogin(func(w http.ResponseWriter, r *http.Request) {
		p.gradeQuery = r.URL.Query()
		w.Write(p.gradesPage)
	}))

	return mux
}
