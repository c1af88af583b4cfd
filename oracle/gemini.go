package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Namenomeaning/chemistry-chatbot/config"
	"go.uber.org/zap"
)

// Gemini generateContent wire types; only the fields this client uses.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inline_data,omitempty"`
}

type geminiBlob struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type geminiGenConfig struct {
	Temperature      float64        `json:"temperature"`
	TopP             float64        `json:"topP,omitempty"`
	MaxOutputTokens  int            `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GeminiClient calls the Gemini generateContent REST endpoint with JSON-mode
// structured output. Transient failures (429, 5xx, network) are retried with
// exponential backoff; other failures surface immediately as permanent
// *Error values.
type GeminiClient struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewGeminiClient(cfg *config.Config, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.OracleRequestTimeout},
		logger:     logger,
	}
}

func (c *GeminiClient) GenerateStructured(ctx context.Context, req Request, out any) error {
	if c.cfg.GeminiAPIKey == "" {
		return &Error{Transient: false, Message: "API key not configured"}
	}

	schema, err := schemaFor(out)
	if err != nil {
		return &Error{Transient: false, Message: err.Error()}
	}

	parts := []geminiPart{{Text: req.Prompt}}
	if len(req.Image) > 0 {
		// Molecular structure uploads are PNG renders; mirror that on the wire.
		parts = append(parts, geminiPart{InlineData: &geminiBlob{
			MIMEType: "image/png",
			Data:     base64.StdEncoding.EncodeToString(req.Image),
		}})
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: geminiGenConfig{
			Temperature:      req.Temperature,
			TopP:             c.cfg.TopP,
			MaxOutputTokens:  c.cfg.MaxOutputTokens,
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal oracle request: %w", err)
	}

	model := req.Model
	if model == "" {
		model = c.cfg.GeminiModel
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.GeminiBaseURL, "/"), model, c.cfg.GeminiAPIKey)

	var lastErr *Error
	maxRetries := c.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			c.backoffSleep(attempt - 1)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return fmt.Errorf("create oracle request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = &Error{Transient: true, Message: err.Error()}
			c.logger.Warn("Oracle request failed, retrying",
				zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		bodyBytes, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = &Error{Transient: true, Message: readErr.Error()}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			oerr := &Error{
				Transient: retryableStatus(resp.StatusCode),
				Status:    resp.StatusCode,
				Message:   strings.TrimSpace(string(bodyBytes)),
			}
			if !oerr.Transient {
				return oerr
			}
			lastErr = oerr
			c.logger.Warn("Oracle returned retryable status",
				zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt+1))
			continue
		}

		return decodeStructured(bodyBytes, out)
	}

	if lastErr == nil {
		lastErr = &Error{Transient: true, Message: "no response from oracle"}
	}
	c.logger.Error("Oracle retries exhausted",
		zap.Int("attempts", maxRetries), zap.String("last_error", lastErr.Message))
	return lastErr
}

func decodeStructured(body []byte, out any) error {
	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return &Error{Transient: false, Message: fmt.Sprintf("decode oracle response: %v", err)}
	}
	if gr.Error != nil {
		return &Error{Transient: retryableStatus(gr.Error.Code), Status: gr.Error.Code, Message: gr.Error.Message}
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return &Error{Transient: false, Message: "no candidates in oracle response"}
	}

	var text strings.Builder
	for _, part := range gr.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text.String())), out); err != nil {
		return &Error{Transient: false, Message: fmt.Sprintf("oracle output is not the requested shape: %v", err)}
	}
	return nil
}

// 429 and 5xx indicate overload or model loading; everything else (malformed
// request, auth failure) must not be retried.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (c *GeminiClient) backoffSleep(attempt int) {
	base := c.cfg.RetryDelaySeconds
	if base <= 0 {
		base = time.Second
	}
	d := base * time.Duration(1<<attempt)
	maxWait := c.cfg.BackoffMaxSeconds
	if maxWait > 0 && d > maxWait {
		d = maxWait
	}
	jitterRatio := c.cfg.BackoffJitterRatio
	if jitterRatio < 0 || jitterRatio > 1 {
		jitterRatio = 0.1
	}
	jitter := time.Duration(float64(d) * jitterRatio)
	time.Sleep(d - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter+1)))
}
