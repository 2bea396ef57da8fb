package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bg1eym/atlas-data/internal/ports"
)

// Libre calls a LibreTranslate-compatible endpoint. It is the fallback
// engine when MyMemory fails or returns an empty result.
type Libre struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Translator = (*Libre)(nil)

// NewLibre creates a reusable client for the given endpoint.
func NewLibre(endpoint, apiKey string, timeout time.Duration) *Libre {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Libre{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

func (l *Libre) Name() string { return "libretranslate" }

// Translate requests an en->zh translation of text.
func (l *Libre) Translate(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"q":      text,
		"source": "en",
		"target": "zh",
		"format": "text",
	}
	if l.apiKey != "" {
		payload["api_key"] = l.apiKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LibreTranslate %d", resp.StatusCode)
	}

	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return strings.TrimSpace(out.TranslatedText), nil
}
