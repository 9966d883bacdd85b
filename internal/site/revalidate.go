// Package site holds the outbound call back to the public website.
package site

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Revalidator tells the public site to rebuild its cached service catalog
// after the processor reports a product or price change.
type Revalidator struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRevalidator(baseURL, token string) *Revalidator {
	return &Revalidator{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Revalidate is a no-op when no token is configured.
func (r *Revalidator) Revalidate(ctx context.Context) error {
	if r.token == "" {
		return nil
	}
	endpoint := fmt.Sprintf("%s/api/revalidate?tag=services&secret=%s", r.baseURL, url.QueryEscape(r.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("revalidate returned status %d", resp.StatusCode)
	}
	return nil
}
