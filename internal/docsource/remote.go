package docsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RemoteConfig holds connection settings for a remote document service.
type RemoteConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration, defaulting to 30s.
func (c *RemoteConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type remote struct {
	base   string
	client *http.Client
}

type remoteDocument struct {
	Name    string   `json:"name"`
	Text    string   `json:"text"`
	Clauses []Clause `json:"clauses"`
}

// NewRemote creates a connector for a remote document service that serves
// clause-segmented documents and accepts anchored comments.
func NewRemote(cfg *RemoteConfig) Connector {
	return &remote{
		base: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
	}
}

func (r *remote) Fetch(ctx context.Context, ref Ref) (*Document, error) {
	endpoint := fmt.Sprintf("%s/documents/%s", r.base, url.PathEscape(ref.ID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetch, ref.String(), resp.StatusCode)
	}

	var rd remoteDocument
	if err := json.NewDecoder(resp.Body).Decode(&rd); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrFetch, ref.String(), err)
	}

	return &Document{
		Ref:     ref,
		Name:    rd.Name,
		Text:    rd.Text,
		Clauses: rd.Clauses,
	}, nil
}

func (r *remote) PostComment(ctx context.Context, ref Ref, anchor, text string) error {
	endpoint := fmt.Sprintf("%s/documents/%s/comments", r.base, url.PathEscape(ref.ID))

	body, err := json.Marshal(map[string]string{
		"anchor": anchor,
		"text":   text,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommentPost, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommentPost, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommentPost, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned %d", ErrCommentPost, ref.String(), resp.StatusCode)
	}

	return nil
}
