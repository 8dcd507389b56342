package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client fetches the deployed site's version manifest.
//
// Base is the URL prefix the site is served from; the manifest is expected
// at <Base>/web_update_notice/web_version.json.
type Client struct {
	Base string
	HTTP *http.Client
}

const fetchTimeout = 15 * time.Second

// Fetch retrieves the current manifest. Every request carries a fresh
// cache-busting query parameter so intermediate caches never serve a stale
// version file.
func (c *Client) Fetch(ctx context.Context) (Manifest, error) {
	u, err := c.manifestURL()
	if err != nil {
		return Manifest{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Manifest{}, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: fetchTimeout}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("fetch version artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Manifest{}, fmt.Errorf("fetch version artifact: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return Manifest{}, fmt.Errorf("read version artifact: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse version artifact: %w", err)
	}
	if strings.TrimSpace(m.Version) == "" {
		return Manifest{}, fmt.Errorf("version artifact has empty version")
	}
	return m, nil
}

func (c *Client) manifestURL() (string, error) {
	base := strings.TrimSpace(c.Base)
	if base == "" {
		return "", fmt.Errorf("artifact base URL is empty")
	}
	u, err := url.Parse(strings.TrimSuffix(base, "/") + "/" + DirName + "/" + FileName)
	if err != nil {
		return "", fmt.Errorf("artifact base URL: %w", err)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(time.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
