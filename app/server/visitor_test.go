package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_VisitorID(t *testing.T) {
	srv, _ := newTestServer(t, "")

	t.Run("mints id when cookie missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		rec := httptest.NewRecorder()

		id := srv.visitorID(rec, req)
		_, err := uuid.Parse(id)
		require.NoError(t, err)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, visitorCookie, cookies[0].Name)
		assert.Equal(t, id, cookies[0].Value)
	})

	t.Run("reuses valid cookie", func(t *testing.T) {
		existing := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.AddCookie(&http.Cookie{Name: visitorCookie, Value: existing})
		rec := httptest.NewRecorder()

		assert.Equal(t, existing, srv.visitorID(rec, req))
		assert.Empty(t, rec.Result().Cookies(), "no new cookie for a known visitor")
	})

	t.Run("replaces garbage cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.AddCookie(&http.Cookie{Name: visitorCookie, Value: "not-a-uuid"})
		rec := httptest.NewRecorder()

		id := srv.visitorID(rec, req)
		assert.NotEqual(t, "not-a-uuid", id)
		require.Len(t, rec.Result().Cookies(), 1)
	})
}
