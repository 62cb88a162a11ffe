package gravatar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashNormalizesEmail(t *testing.T) {
	assert.Equal(t, "c160f8cc69a4f0bf2b0362752353d060", Hash("alice@example.com"))
	// case and surrounding whitespace are ignored
	assert.Equal(t, "60a6c20d49f49bc210ac98d7e47c74a0", Hash("  MyEMAIL@Example.COM "))
}

func TestURL(t *testing.T) {
	assert.Equal(t,
		"https://www.gravatar.com/avatar/c160f8cc69a4f0bf2b0362752353d060",
		URL("alice@example.com"))
}

func TestIsAvatarURL(t *testing.T) {
	assert.True(t, IsAvatarURL("https://www.gravatar.com/avatar/xyz"))
	assert.False(t, IsAvatarURL("http://other.example/img.png"))
	assert.False(t, IsAvatarURL("://bad"))
	assert.False(t, IsAvatarURL(""))
}

func TestResolveFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "404", r.URL.Query().Get("d"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("https://example.com/default_avatar.png")
	c.BaseURL = srv.URL

	got := c.Resolve(context.Background(), "alice@example.com")
	assert.Equal(t, srv.URL+"/avatar/c160f8cc69a4f0bf2b0362752353d060", got)
}

func TestResolveUnknownEmailFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New("https://example.com/default_avatar.png")
	c.BaseURL = srv.URL

	got := c.Resolve(context.Background(), "nobody@example.com")
	assert.Equal(t, "https://example.com/default_avatar.png", got)
}

func TestResolveNetworkErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New("https://example.com/default_avatar.png")
	c.BaseURL = srv.URL

	got := c.Resolve(context.Background(), "alice@example.com")
	assert.Equal(t, "https://example.com/default_avatar.png", got)
}
