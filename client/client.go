package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "iiif-presentation/1.0"
)

// Client fetches JSON documents from collaborating services, caching
// response bodies briefly so repeated merge attempts do not hammer the
// asset source.
type Client struct {
	client *http.Client
	cache  *cache.Cache
}

func New() *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}
	c := &Client{
		client: &httpClient,
		cache:  cache.New(30*time.Second, time.Minute),
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// FetchJSON gets url and decodes the body into out. A 404 maps to
// domain.ErrNotFound so callers can distinguish an absent document from a
// transport failure.
func (c *Client) FetchJSON(ctx context.Context, url string, out any) error {
	if cached, found := c.cache.Get(url); found {
		return json.Unmarshal(cached.([]byte), out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NotFoundError{Resource: url}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	c.cache.Set(url, body, cache.DefaultExpiration)

	return json.Unmarshal(body, out)
}
