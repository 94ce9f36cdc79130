package syncmegaphone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Megaphone is a client for the push broadcast service.
type Megaphone struct {
	URL             string
	ReaderAuth      string
	BroadcasterAuth string
	BroadcastID     string
	HTTP            *http.Client
}

func (m *Megaphone) httpClient() *http.Client {
	if m.HTTP != nil {
		return m.HTTP
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (m *Megaphone) do(req *http.Request, auth string) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+auth)
	resp, err := m.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: HTTP %d: %s", req.Method, req.URL, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// Version returns the version currently broadcast, "" if there is none.
func (m *Megaphone) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(m.URL, "/")+"/v1/broadcasts", nil)
	if err != nil {
		return "", err
	}
	body, err := m.do(req, m.ReaderAuth)
	if err != nil {
		return "", fmt.Errorf("read megaphone broadcasts: %w", err)
	}

	var payload struct {
		Broadcasts map[string]string `json:"broadcasts"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode megaphone broadcasts: %w", err)
	}
	return unquote(payload.Broadcasts[m.BroadcastID]), nil
}

// SetVersion broadcasts version.
func (m *Megaphone) SetVersion(ctx context.Context, version string) error {
	target := strings.TrimRight(m.URL, "/") + "/v1/broadcasts/" + m.BroadcastID
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewBufferString(strconv.Quote(version)))
	if err != nil {
		return err
	}
	if _, err := m.do(req, m.BroadcasterAuth); err != nil {
		return fmt.Errorf("send megaphone version: %w", err)
	}
	return nil
}

// Broadcast versions are stored as quoted strings.
func unquote(v string) string {
	if s, err := strconv.Unquote(v); err == nil {
		return s
	}
	return v
}
