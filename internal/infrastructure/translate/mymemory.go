// Package translate produces zh-CN summaries through free translation
// backends. Engines are tried in order; a failure falls through to the
// next and never fails the pipeline.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bg1eym/atlas-data/internal/ports"
)

const defaultTimeout = 10 * time.Second

// MyMemory calls the MyMemory public translation API.
type MyMemory struct {
	endpoint string
	email    string
	http     *http.Client
}

var _ ports.Translator = (*MyMemory)(nil)

// NewMyMemory creates a reusable client. An email raises the API's daily
// quota and is passed through when set.
func NewMyMemory(endpoint, email string, timeout time.Duration) *MyMemory {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &MyMemory{
		endpoint: endpoint,
		email:    email,
		http:     &http.Client{Timeout: timeout},
	}
}

func (m *MyMemory) Name() string { return "mymemory" }

// Translate requests an en->zh translation of text.
func (m *MyMemory) Translate(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", "en|zh")
	if m.email != "" {
		q.Set("de", m.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("MyMemory %d", resp.StatusCode)
	}

	var body struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return strings.TrimSpace(body.ResponseData.TranslatedText), nil
}
