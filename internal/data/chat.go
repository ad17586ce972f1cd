package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-kratos/aegis/circuitbreaker"
	"github.com/go-kratos/aegis/circuitbreaker/sre"
	"golang.org/x/time/rate"

	"github.com/yola1107/lumina-ludo/internal/conf"
)

var ErrNoChoices = errors.New("no choices returned")

// chatClient OpenAI 兼容的 chat/completions 客户端
type chatClient struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
	limiter *rate.Limiter
	breaker circuitbreaker.CircuitBreaker
}

func newChatClient(c *conf.Advisor) *chatClient {
	limit := rate.Inf
	if c.MinInterval > 0 {
		limit = rate.Every(c.MinInterval)
	}
	return &chatClient{
		baseURL: strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"),
		apiKey:  strings.TrimSpace(c.APIKey),
		model:   c.Model,
		hc:      &http.Client{}, // 超时由调用方 ctx 控制
		limiter: rate.NewLimiter(limit, 1),
		breaker: sre.NewBreaker(sre.WithRequest(20), sre.WithWindow(10*time.Second)),
	}
}

// complete 请求结构化 JSON 输出, 返回 message.content. 熔断打开时直接失败
func (c *chatClient) complete(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	if err := c.breaker.Allow(); err != nil {
		return "", fmt.Errorf("chat breaker: %w", err)
	}
	content, err := c.do(ctx, system, user, schemaName, schema)
	if err != nil {
		c.breaker.MarkFailed()
		return "", err
	}
	c.breaker.MarkSuccess()
	return content, nil
}

func (c *chatClient) do(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"strict": true,
				"schema": schema,
			},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat http %d: %s", resp.StatusCode, truncate(string(body), 800))
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err = json.Unmarshal(body, &cc); err != nil {
		return "", err
	}
	if len(cc.Choices) == 0 {
		return "", ErrNoChoices
	}
	return cc.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// extractJSONObject 模型偶尔在 JSON 前后附带文字
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}
