// Package gemini implements llm.Client against the generativelanguage
// generateContent endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/llm"
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 90 * time.Second},
	}
}

type generateContentRequest struct {
	SystemInstruction *content     `json:"system_instruction,omitempty"`
	Contents          []content    `json:"contents"`
	Tools             []toolsEntry `json:"tools,omitempty"`
	GenerationConfig  *genConfig   `json:"generation_config,omitempty"`
}

type genConfig struct {
	Temperature float64 `json:"temperature"`
}

type toolsEntry struct {
	FunctionDeclarations []llm.FunctionDecl `json:"function_declarations"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type functionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type functionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (c *Client) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	start := time.Now()

	body := generateContentRequest{
		Contents:         toContents(req.Messages),
		GenerationConfig: &genConfig{Temperature: 0},
	}
	if strings.TrimSpace(req.System) != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}
	if len(req.Tools) > 0 {
		body.Tools = []toolsEntry{{FunctionDeclarations: req.Tools}}
	}

	b, err := json.Marshal(body)
	if err != nil {
		return llm.Result{}, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.BaseURL, url.PathEscape(req.Model), url.QueryEscape(c.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return llm.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return llm.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Result{}, err
	}

	var out generateContentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return llm.Result{}, fmt.Errorf("gemini: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil && out.Error.Message != "" {
			return llm.Result{}, fmt.Errorf("gemini http %d: %s", resp.StatusCode, out.Error.Message)
		}
		return llm.Result{}, fmt.Errorf("gemini http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if len(out.Candidates) == 0 {
		return llm.Result{}, fmt.Errorf("gemini: empty candidates")
	}

	res := llm.Result{
		Usage: llm.Usage{
			InputTokens:  out.UsageMetadata.PromptTokenCount,
			OutputTokens: out.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  out.UsageMetadata.TotalTokenCount,
		},
		Duration: time.Since(start),
	}
	var texts []string
	for _, p := range out.Candidates[0].Content.Parts {
		if p.FunctionCall != nil && res.FunctionCall == nil {
			res.FunctionCall = &llm.FunctionCall{Name: p.FunctionCall.Name, Args: p.FunctionCall.Args}
		}
		if strings.TrimSpace(p.Text) != "" {
			texts = append(texts, p.Text)
		}
	}
	res.Text = strings.TrimSpace(strings.Join(texts, "\n"))
	return res, nil
}

func toContents(messages []llm.Message) []content {
	out := make([]content, 0, len(messages))
	for _, m := range messages {
		switch {
		case m.FunctionCall != nil:
			out = append(out, content{Role: llm.RoleModel, Parts: []part{{
				FunctionCall: &functionCall{Name: m.FunctionCall.Name, Args: m.FunctionCall.Args},
			}}})
		case m.FunctionResponse != nil:
			out = append(out, content{Role: llm.RoleUser, Parts: []part{{
				FunctionResponse: &functionResponse{Name: m.FunctionResponse.Name, Response: m.FunctionResponse.Result},
			}}})
		default:
			role := m.Role
			if role == "" {
				role = llm.RoleUser
			}
			out = append(out, content{Role: role, Parts: []part{{Text: m.Content}}})
		}
	}
	return out
}
