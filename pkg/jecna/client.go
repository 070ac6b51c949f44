package jecna

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"jecna-client/internal/components/assert"
	"jecna-client/internal/components/chrono"
	"jecna-client/internal/components/telemetry"
	"jecna-client/pkg/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_login        = "client.login"
	report_client_logout       = "client.logout"
	report_client_is_logged_in = "client.is-logged-in"
	report_client_query        = "client.query"
	report_client_fetch_grades = "client.fetch-grades"
)

const (
	DefaultBaseUrl   = "https://www.spsejecna.cz"
	DefaultUserAgent = "JAPI"
	DefaultTimeout   = 10 * time.Second

	SessionCookieName = "JSESSIONID"
	roleCookieName    = "WTDGUID"

	loginPath     = "/user/login"
	logoutPath    = "/user/logout"
	loginTestPath = "/user-student/record-list"
	needLoginPath = "/user/need-login"
	gradesPath    = "/score/student"
)

// Role is the kind of user the portal renders pages for.
type Role int

const (
	RoleInterested Role = iota
	RoleStudent
	RoleEmployee
)

func (r Role) cookieValue() string {
	switch r {
	case RoleStudent:
		return "10"
	case RoleEmployee:
		return "100"
	}
	return "0"
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
	// AutoLogin remembers the credentials of the last successful login and
	// logs in again once when the portal reports the session has expired.
	AutoLogin bool
	// RequestsPerSecond defaults to 2.
	RequestsPerSecond float64
	// BypassCloudflare wraps the transport with browser-like TLS settings,
	// it should be disabled when talking to plain http servers.
	BypassCloudflare bool
	// Dump receives every request and response exchanged with the portal,
	// nil disables it.
	Dump restyutil.Output
}

// Client holds a session with the portal. Operations on a single client are
// serialized, a query never starts before the previous one has finished.
type Client struct {
	baseUrl *url.URL
	http    *resty.Client
	jar     http.CookieJar
	tel     telemetry.API
	clock   chrono.API

	autoLogin bool

	mutex         sync.Mutex
	auth          *Auth
	authenticated bool
	lastLogin     time.Time
}

func NewClient(options ClientOptions, tel telemetry.API, clock chrono.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotNil(clock)

	tel = telemetry.NewScopedAPI("jecna", tel)

	if options.BaseUrl == "" {
		options.BaseUrl = DefaultBaseUrl
	}
	if options.UserAgent == "" {
		options.UserAgent = DefaultUserAgent
	}
	if options.Timeout == 0 {
		options.Timeout = DefaultTimeout
	}
	if options.RequestsPerSecond == 0 {
		options.RequestsPerSecond = 2
	}
	assert.Positive(options.RequestsPerSecond, "requests per second")

	baseUrl, err := url.Parse(strings.TrimSuffix(options.BaseUrl, "/"))
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if options.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", options.UserAgent)
	httpClient.SetTimeout(options.Timeout)
	// redirects carry the login result and the need-login signal, so they
	// are handed back to the caller instead of being followed
	httpClient.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	burst := int(options.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	rateLimiter := rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, "jecna-client/pkg/jecna", tel)
	if options.Dump != nil {
		restyutil.Dump(httpClient, options.Dump)
	}

	return &Client{
		baseUrl:   baseUrl,
		http:      httpClient,
		jar:       jar,
		tel:       tel,
		clock:     clock,
		autoLogin: options.AutoLogin,
	}, nil
}

func (c *Client) BaseUrl() *url.URL {
	u := *c.baseUrl
	return &u
}

// Cookie returns the value of a cookie the portal has set, ok is false if
// it was never set.
func (c *Client) Cookie(name string) (string, bool) {
	for _, cookie := range c.jar.Cookies(c.baseUrl) {
		if cookie.Name == name {
			return cookie.Value, true
		}
	}
	return "", false
}

func (c *Client) SetCookie(name, value string) {
	c.jar.SetCookies(c.baseUrl, []*http.Cookie{{
		Name:  name,
		Value: value,
		Path:  "/",
	}})
}

func (c *Client) SetRole(role Role) {
	c.SetCookie(roleCookieName, role.cookieValue())
}

// LastSuccessfulLogin returns the zero time if the client never logged in.
func (c *Client) LastSuccessfulLogin() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lastLogin
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.LoginAuth(ctx, Auth{Username: username, Password: password})
}

func (c *Client) LoginAuth(ctx context.Context, auth Auth) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.login(ctx, auth)
}

func (c *Client) login(ctx context.Context, auth Auth) error {
	loginError := func(err error) error {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	c.SetRole(RoleStudent)

	res, err := c.http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("login page request: %w", err),
		)
		return loginError(err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("parse login page: %w", err),
		)
		return loginError(err)
	}

	if doc.Find(`[href="/user/logout"]`).Length() > 0 {
		c.tel.ReportDebug("already logged in", auth.Username)
		c.onLogin(auth)
		return nil
	}

	token3, ok := doc.Find("input[name=token3]").First().Attr("value")
	if !ok {
		err := errors.New("could not find token3 on login page")
		c.tel.ReportBroken(report_client_login, err)
		return loginError(err)
	}

	res, err = c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"user":   auth.Username,
			"pass":   auth.Password,
			"token3": token3,
		}).
		Post(loginPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("login form request: %w", err),
		)
		return loginError(err)
	}

	location := res.Header().Get("Location")
	if res.StatusCode() != http.StatusFound || !c.isRootLocation(location) {
		c.tel.ReportWarning(report_client_login, "credentials rejected", auth.Username, res.StatusCode(), location)
		return loginError(errors.New("credentials rejected"))
	}

	c.onLogin(auth)
	c.tel.ReportDebug("logged in", auth.Username)
	return nil
}

func (c *Client) onLogin(auth Auth) {
	c.authenticated = true
	c.lastLogin = c.clock.Now()
	if c.autoLogin {
		c.auth = &auth
	}
}

func (c *Client) resolve(location string) (*url.URL, bool) {
	if location == "" {
		return nil, false
	}
	ref, err := url.Parse(location)
	if err != nil {
		return nil, false
	}
	resolved := c.baseUrl.ResolveReference(ref)
	if resolved.Host != c.baseUrl.Host {
		return nil, false
	}
	return resolved, true
}

func (c *Client) isRootLocation(location string) bool {
	resolved, ok := c.resolve(location)
	return ok && resolved.Path == "/" && resolved.RawQuery == ""
}

func (c *Client) isNeedLoginRedirect(res *resty.Response) bool {
	if !res.IsError() && res.StatusCode() < 300 {
		return false
	}
	resolved, ok := c.resolve(res.Header().Get("Location"))
	return ok && strings.HasPrefix(resolved.Path, needLoginPath)
}

// Logout ends the session on the portal and forgets remembered credentials.
func (c *Client) Logout(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.auth = nil
	c.authenticated = false

	_, err := c.http.R().
		SetContext(ctx).
		Get(logoutPath)
	if err != nil {
		c.tel.ReportBroken(report_client_logout, err)
		return fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}
	return nil
}

// IsLoggedIn asks the portal whether the current session is still valid.
func (c *Client) IsLoggedIn(ctx context.Context) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isLoggedIn(ctx)
}

func (c *Client) isLoggedIn(ctx context.Context) (bool, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(loginTestPath)
	if err != nil {
		c.tel.ReportBroken(report_client_is_logged_in, err)
		return false, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}
	return res.StatusCode() == http.StatusOK, nil
}

// RestoreSession reuses a session id obtained from an earlier client, it
// returns ErrNotAuthenticated if the portal no longer accepts it.
func (c *Client) RestoreSession(ctx context.Context, sessionId string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.SetRole(RoleStudent)
	c.SetCookie(SessionCookieName, sessionId)
	ok, err := c.isLoggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		c.authenticated = false
		return ErrNotAuthenticated
	}
	c.authenticated = true
	return nil
}

// Query performs a GET request on an authenticated page of the portal.
func (c *Client) Query(ctx context.Context, path string, params map[string]string) (*resty.Response, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.authenticated {
		if c.auth == nil {
			return nil, ErrNotAuthenticated
		}
		err := c.login(ctx, *c.auth)
		if err != nil {
			return nil, err
		}
	}

	res, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if !c.isNeedLoginRedirect(res) {
		return c.checkStatus(path, res)
	}

	c.authenticated = false
	if c.auth == nil {
		c.tel.ReportWarning(report_client_query, "session expired", path)
		return nil, ErrNotAuthenticated
	}
	c.tel.ReportDebug("session expired, logging in again", path)
	err = c.login(ctx, *c.auth)
	if err != nil {
		return nil, err
	}

	res, err = c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if c.isNeedLoginRedirect(res) {
		c.authenticated = false
		c.tel.ReportWarning(report_client_query, "session rejected after login", path)
		return nil, ErrNotAuthenticated
	}
	return c.checkStatus(path, res)
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) (*resty.Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		c.tel.ReportBroken(
			report_client_query,
			fmt.Errorf("fetch %s: %w", path, err),
		)
		return nil, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}
	return res, nil
}

func (c *Client) checkStatus(path string, res *resty.Response) (*resty.Response, error) {
	if res.StatusCode() != http.StatusOK {
		c.tel.ReportBroken(report_client_query, "unexpected status", path, res.StatusCode())
		return nil, fmt.Errorf("%w: %s returned %s", ErrRemoteFetch, path, res.Status())
	}
	return res, nil
}

// FetchGrades fetches and parses the grades page of the given half.
func (c *Client) FetchGrades(ctx context.Context, year SchoolYear, half SchoolYearHalf) (GradesPage, error) {
	if !half.Valid() {
		return GradesPage{}, fmt.Errorf("invalid school year half %d", int(half))
	}
	c.tel.ReportDebug("fetching grades", year.String(), half.String())
	return c.fetchGrades(ctx, encodePeriod(year, half))
}

// FetchCurrentGrades fetches the half the portal selects by default.
func (c *Client) FetchCurrentGrades(ctx context.Context) (GradesPage, error) {
	return c.fetchGrades(ctx, nil)
}

func (c *Client) fetchGrades(ctx context.Context, params map[string]string) (GradesPage, error) {
	res, err := c.Query(ctx, gradesPath, params)
	if err != nil {
		return GradesPage{}, err
	}
	page, err := ParseGradesPage(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_grades, err)
		return GradesPage{}, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}
	c.tel.ReportCount(report_client_fetch_grades, int64(len(page.subjects)))
	return page, nil
}
