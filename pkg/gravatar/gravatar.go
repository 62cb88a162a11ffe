package gravatar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Host is the canonical avatar service host. Avatar URLs pointing at this
// host are stored verbatim; anything else is rewritten to a canonical URL.
const Host = "www.gravatar.com"

const defaultBaseURL = "https://" + Host

// Client resolves avatar image URLs for email addresses. Resolution never
// fails: any lookup error is swallowed and DefaultURL is returned instead.
type Client struct {
	// BaseURL is overridable for tests; empty means the public service.
	BaseURL    string
	DefaultURL string
	HTTPClient *http.Client
}

func New(defaultURL string) *Client {
	return &Client{
		DefaultURL: defaultURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Hash returns the gravatar email hash: md5 of the trimmed, lowercased address.
func Hash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// URL builds the canonical avatar URL for an email.
func URL(email string) string {
	return defaultBaseURL + "/avatar/" + Hash(email)
}

// IsAvatarURL reports whether raw already points at the avatar service.
func IsAvatarURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Host == Host
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return defaultBaseURL
}

// Resolve probes the avatar service for an image registered to email and
// returns its URL. d=404 makes the service answer 404 for unknown emails
// instead of serving a generated placeholder. On any failure (network,
// non-200 status) the fixed default URL is returned.
func (c *Client) Resolve(ctx context.Context, email string) string {
	avatarURL := c.baseURL() + "/avatar/" + Hash(email)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, avatarURL+"?d=404", nil)
	if err != nil {
		return c.DefaultURL
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return c.DefaultURL
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return c.DefaultURL
	}
	return avatarURL
}
