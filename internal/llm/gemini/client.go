package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidmaina/contract-vault/internal/llm"
)

// ExtractContract implements llm.FieldExtractor against the Gemini
// generateContent endpoint. Transport errors, non-2xx replies, and malformed
// JSON all degrade to the deterministic fallback candidate; the only error
// ever returned is context cancellation.
func (c *Client) ExtractContract(ctx context.Context, req llm.ExtractRequest) (llm.ExtractionReply, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"file_name", req.FileName,
		"text_len", len(req.FileContent),
	)

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{
				{"text": llm.BuildExtractionPrompt(req)},
			}},
		},
		"generationConfig": map[string]any{
			"temperature":     c.cfg.Temperature,
			"topK":            20,
			"topP":            0.8,
			"maxOutputTokens": 4096,
		},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)

	raw, err := c.postWithRetry(ctx, rid, endpoint, body)
	if err != nil {
		if ctx.Err() != nil {
			return llm.ExtractionReply{}, nil, ctx.Err()
		}
		c.logger.Error("llm.extract.transport_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return c.fallback(rid, req), nil, nil
	}

	reply, rawJSON, err := c.parseReply(rid, raw)
	if err != nil {
		c.logger.Error("llm.extract.parse_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return c.fallback(rid, req), rawJSON, nil
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"missing_fields", len(reply.MissingFields),
		"warnings", len(reply.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return reply, rawJSON, nil
}

func (c *Client) fallback(rid string, req llm.ExtractRequest) llm.ExtractionReply {
	c.logger.Warn("llm.extract.fallback", "req_id", rid, "file_name", req.FileName)
	return llm.FallbackReply(req.FileName, req.FileContent, time.Now().UTC())
}

// parseReply digs the first balanced JSON object out of the model text,
// sanitizes it, validates it against the versioned reply schema, and
// unmarshals it.
func (c *Client) parseReply(rid string, raw []byte) (llm.ExtractionReply, []byte, error) {
	var gr struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gr); err != nil {
		return llm.ExtractionReply{}, nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return llm.ExtractionReply{}, nil, fmt.Errorf("no candidates in response")
	}
	text := gr.Candidates[0].Content.Parts[0].Text

	obj, err := llm.FirstJSONObject([]byte(text))
	if err != nil {
		return llm.ExtractionReply{}, nil, err
	}

	cleaned, _, err := llm.NormalizeReplyJSON(obj, c.logger)
	if err != nil {
		return llm.ExtractionReply{}, obj, err
	}
	if err := llm.ValidateAgainstSchema(llm.BuildReplySchema(), cleaned); err != nil {
		c.logger.Warn("llm.extract.schema_validation_failed", "req_id", rid, "error", err)
		return llm.ExtractionReply{}, cleaned, err
	}

	var reply llm.ExtractionReply
	if err := json.Unmarshal(cleaned, &reply); err != nil {
		return llm.ExtractionReply{}, cleaned, fmt.Errorf("unmarshal reply: %w", err)
	}
	return reply, cleaned, nil
}

// postWithRetry posts the request body, retrying once (configurable) with
// backoff on transport errors and non-2xx statuses.
func (c *Client) postWithRetry(ctx context.Context, rid, url string, body map[string]any) ([]byte, error) {
	var lastErr error
	attempts := 1 + c.cfg.MaxRetries
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.logger.Warn("llm.http.retry", "req_id", rid, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryBackoff):
			}
		}
		raw, err := c.post(ctx, url, body)
		if err == nil {
			return raw, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("llm.http.body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("non-2xx status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}
	return raw, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
