package gemma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPService forwards prompts to a Gemma-compatible HTTP endpoint.
type HTTPService struct {
	url    string
	client *http.Client
}

func NewHTTPService(url string) *HTTPService {
	return &HTTPService{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	System    string `json:"system,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
	AudioPath string `json:"audio_path,omitempty"`
}

func (s *HTTPService) GenerateText(ctx context.Context, prompt, system string) (string, error) {
	return s.post(ctx, "generate_text", generateRequest{Prompt: prompt, System: system})
}

func (s *HTTPService) GenerateMultimodal(ctx context.Context, text, imagePath, audioPath string) (string, error) {
	return s.post(ctx, "generate_multimodal", generateRequest{
		Prompt:    text,
		ImagePath: imagePath,
		AudioPath: audioPath,
	})
}

func (s *HTTPService) post(ctx context.Context, op string, req generateRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", &ServiceError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return "", &ServiceError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(httpReq)
	if err != nil {
		return "", &ServiceError{Op: op, Err: fmt.Errorf("send request: %w", err)}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", &ServiceError{Op: op, Status: res.StatusCode, Err: fmt.Errorf("gemma http status %d: %s", res.StatusCode, string(body))}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &ServiceError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	// The backend is not guaranteed to wrap its reply in JSON; accept bare
	// text as well as any of the common response field names.
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return strings.TrimSpace(string(body)), nil
	}
	return extractText(obj), nil
}

func extractText(obj map[string]any) string {
	for _, k := range []string{"text", "response", "output", "message"} {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
