package designgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/printforge/server/internal/domain"
)

// Options configures the remote generation client.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client performs HTTP calls to the multimodal generation service. It
// never retries on its own: regenerating a prompt has real cost, so
// retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	model      string
}

// NewClient builds a Client. A bounded timeout is always applied to the
// underlying HTTP client since generation is the longest-running and
// least predictable outbound call.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
		model:      opts.Model,
	}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type generationPayload struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Modalities []string      `json:"modalities"`
}

// Generate sends the prompt plus optional reference images and returns
// the first image the response yields. A response with no parseable
// image is a generation error, never a silent empty success.
func (c *Client) Generate(ctx context.Context, prompt string, referenceImages []string) (domain.GenerationResult, error) {
	if c.token == "" {
		return domain.GenerationResult{}, fmt.Errorf("%w: generation API key is missing", domain.ErrGeneration)
	}
	if strings.TrimSpace(prompt) == "" {
		return domain.GenerationResult{}, fmt.Errorf("%w: prompt is empty", domain.ErrGeneration)
	}

	content := []contentPart{{Type: "text", Text: prompt}}
	for _, ref := range referenceImages {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		content = append(content, contentPart{Type: "image_url", ImageURL: &imageRef{URL: ref}})
	}

	payload := generationPayload{
		Model:      c.model,
		Messages:   []chatMessage{{Role: "user", Content: content}},
		Modalities: []string{"image", "text"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.GenerationResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	defer resp.Body.Close()

	var out generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return domain.GenerationResult{}, fmt.Errorf("%w: http %d", domain.ErrGeneration, resp.StatusCode)
		}
		return domain.GenerationResult{}, fmt.Errorf("%w: decode response: %v", domain.ErrGeneration, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error != nil && out.Error.Message != "" {
			return domain.GenerationResult{}, fmt.Errorf("%w: %s", domain.ErrGeneration, out.Error.Message)
		}
		return domain.GenerationResult{}, fmt.Errorf("%w: http %d", domain.ErrGeneration, resp.StatusCode)
	}

	url, _, ok := ExtractImageURL(out)
	if !ok {
		return domain.GenerationResult{}, fmt.Errorf("%w: no image in response", domain.ErrGeneration)
	}
	return domain.GenerationResult{ImageURL: url}, nil
}
