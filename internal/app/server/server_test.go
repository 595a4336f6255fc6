package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-daterange/components/daterange"
	"github.com/goliatone/go-daterange/internal/config"
	field "github.com/goliatone/go-daterange/pkg/daterange"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:      "test",
		LogLevel: "debug",
		Timezone: "UTC",
		HTTPServer: config.HTTPServer{
			Address:         "127.0.0.1:0",
			RequestTimeout:  time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
		Form: config.Form{
			BasePath:   "/search",
			AssetsPath: "/assets",
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApp_ServesFormAndAssets(t *testing.T) {
	app, err := New(testConfig(), discardLogger(), nil)
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/search")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `action="/search"`)
	assert.Contains(t, string(body), `href="/assets/daterange-vanilla.css"`)

	for _, asset := range []string{"/assets/daterange-vanilla.css", "/assets/daterange.js"} {
		res, err := http.Get(srv.URL + asset)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, asset)
	}
}

func TestApp_SubmitReachesSearcher(t *testing.T) {
	var got daterange.Query
	searcher := daterange.SearcherFunc(func(_ context.Context, query daterange.Query) error {
		got = query
		return nil
	})

	app, err := New(testConfig(), discardLogger(), searcher)
	require.NoError(t, err)

	form := url.Values{"startDate": {"2020-01-01"}, "endDate": {"2020-01-31"}}
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2020-01-01", got.StartDate)
	assert.Equal(t, "2020-01-31", got.EndDate)
}

const testCSRFKey = "0123456789abcdef0123456789abcdef"

func csrfConfig(secure bool) *config.Config {
	cfg := testConfig()
	cfg.CSRF = config.CSRF{Field: "_csrf", Key: testCSRFKey, Secure: secure}
	return cfg
}

// issueToken loads the form as a JSON client and returns the issued token
// with the cookie it is bound to.
func issueToken(t *testing.T, h http.Handler) (string, []*http.Cookie) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Hidden []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"hidden"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Hidden, 1)
	require.Equal(t, "_csrf", payload.Hidden[0].Name)
	require.NotEmpty(t, payload.Hidden[0].Value)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return payload.Hidden[0].Value, cookies
}

func csrfPost(form url.Values, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestApp_CSRFVerifiesPostedToken(t *testing.T) {
	calls := 0
	searcher := daterange.SearcherFunc(func(context.Context, daterange.Query) error {
		calls++
		return nil
	})
	app, err := New(csrfConfig(false), discardLogger(), searcher)
	require.NoError(t, err)
	h := app.Handler()

	token, cookies := issueToken(t, h)
	dates := url.Values{"startDate": {"2020-01-01"}, "endDate": {"2020-01-31"}}

	withToken := url.Values{"_csrf": {token}}
	for k, v := range dates {
		withToken[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, csrfPost(withToken, cookies))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, calls)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, csrfPost(dates, cookies))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"invalid csrf token"}`, rec.Body.String())

	forged := url.Values{"_csrf": {"bm90LWEtdG9rZW4="}}
	for k, v := range dates {
		forged[k] = v
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, csrfPost(forged, cookies))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, csrfPost(withToken, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code, "token without its cookie must be rejected")

	assert.Equal(t, 1, calls, "rejected posts must not reach the searcher")
}

func TestApp_CSRFAcceptsHeaderToken(t *testing.T) {
	app, err := New(csrfConfig(false), discardLogger(), nil)
	require.NoError(t, err)
	h := app.Handler()

	token, cookies := issueToken(t, h)

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"startDate":"2020-01-01","endDate":"2020-01-31"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CSRF-Token", token)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestApp_CSRFSecureRequiresReferer(t *testing.T) {
	app, err := New(csrfConfig(true), discardLogger(), nil)
	require.NoError(t, err)
	h := app.Handler()

	token, cookies := issueToken(t, h)
	form := url.Values{"_csrf": {token}, "startDate": {"2020-01-01"}, "endDate": {"2020-01-31"}}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, csrfPost(form, cookies))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := csrfPost(form, cookies)
	req.Header.Set("Referer", "https://example.com/search")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestNew_RejectsShortCSRFKey(t *testing.T) {
	cfg := csrfConfig(false)
	cfg.CSRF.Key = "short"

	_, err := New(cfg, discardLogger(), nil)
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := New(testConfig(), discardLogger(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestLogSearcher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	query, messages := daterange.CheckRange(field.FormValues{StartDate: "2024-05-01", EndDate: "2024-05-03"}, "")
	require.Empty(t, messages)
	require.NoError(t, LogSearcher(logger).Search(context.Background(), query))

	assert.Contains(t, buf.String(), "start_date=2024-05-01")
	assert.Contains(t, buf.String(), "days=3")
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
}
