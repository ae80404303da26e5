package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrukov/shade/app/site"
	"github.com/mkrukov/shade/app/store"
)

const testPage = `<!DOCTYPE html>
<html><head><title>post</title></head>
<body class="page">
<button id="theme-toggle" class="btn">toggle</button>
<main>hello</main>
</body></html>`

func newTestServer(t *testing.T, adminHash string) (*Server, *store.Store) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(testPage), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{margin:0}"), 0o600))

	siteSvc, err := site.New(dir, 100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = siteSvc.Close() })

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv, err := New(st, siteSvc, Config{
		Address:           "127.0.0.1:0",
		ReadTimeout:       5 * time.Second,
		Version:           "test",
		AdminPasswordHash: adminHash,
		LoginTTL:          time.Minute,
	})
	require.NoError(t, err)
	return srv, st
}

func visitorCookieFrom(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == visitorCookie {
			return c
		}
	}
	return nil
}

func TestServer_ServesPageWithDefaultTheme(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "theme--light")
	assert.Contains(t, body, "theme__switch--light")
	assert.NotContains(t, body, "theme--dark")

	cookie := visitorCookieFrom(t, resp)
	require.NotNil(t, cookie, "first visit mints a visitor cookie")
}

func TestServer_ServesPersistedTheme(t *testing.T) {
	srv, st := newTestServer(t, "")
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "11111111-1111-1111-1111-111111111111/theme", []byte(`"dark"`)))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", http.NoBody)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: visitorCookie, Value: "11111111-1111-1111-1111-111111111111"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := readBody(t, resp)
	assert.Contains(t, body, "theme--dark")
	assert.Contains(t, body, "theme__switch--dark")
	assert.NotContains(t, body, "theme--light")
}

func TestServer_CorruptPersistedThemeFallsBack(t *testing.T) {
	srv, st := newTestServer(t, "")
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "22222222-2222-2222-2222-222222222222/theme", []byte(`"blue"`)))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", http.NoBody)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: visitorCookie, Value: "22222222-2222-2222-2222-222222222222"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Contains(t, readBody(t, resp), "theme--light")
}

func TestServer_ThemeToggle(t *testing.T) {
	srv, st := newTestServer(t, "")
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	// first toggle, no cookie yet: light -> dark
	resp, err := http.Post(ts.URL+"/theme", "application/x-www-form-urlencoded", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("HX-Refresh"))
	assert.Contains(t, readBody(t, resp), `"dark"`)

	cookie := visitorCookieFrom(t, resp)
	require.NotNil(t, cookie)

	// the new value is persisted for that visitor
	val, err := st.Get(context.Background(), cookie.Value+"/theme")
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(val))

	// second toggle with the cookie: dark -> light
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/theme", http.NoBody)
	require.NoError(t, err)
	req.AddCookie(cookie)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()

	assert.Contains(t, readBody(t, resp2), `"light"`)
	val, err = st.Get(context.Background(), cookie.Value+"/theme")
	require.NoError(t, err)
	assert.Equal(t, `"light"`, string(val))
}

func TestServer_ThemeToggleRedirectsBack(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/theme", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Referer", ts.URL+"/posts/first.html")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, ts.URL+"/posts/first.html", resp.Header.Get("Location"))
}

func TestServer_ServesAssetsRaw(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/style.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body{margin:0}", readBody(t, resp))
	assert.Nil(t, visitorCookieFrom(t, resp), "assets don't touch visitor identity")
}

func TestServer_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/missing.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Ping(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", readBody(t, resp))
}

func TestServer_BaseURL(t *testing.T) {
	srv, _ := newTestServer(t, "")
	srv.baseURL = "/blog"
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.Get(ts.URL + "/blog")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)

	resp2, err := client.Get(ts.URL + "/blog/")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Contains(t, readBody(t, resp2), "theme--light")
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
