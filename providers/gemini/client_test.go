package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/llm"
)

func TestChatParsesFunctionCall(t *testing.T) {
	var gotBody generateContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role": "model",
					"parts": []any{map[string]any{
						"functionCall": map[string]any{
							"name": "atualizar_estoque",
							"args": map[string]any{"produto": "Cerveja X", "quantidade": 10, "acao": "compra"},
						},
					}},
				},
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 3, "totalTokenCount": 15},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	res, err := c.Chat(context.Background(), llm.Request{
		Model:    "gemini-1.5-flash",
		System:   "Você é um assistente de estoque.",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Comprei 10 caixas de Cerveja X"}},
		Tools: []llm.FunctionDecl{{
			Name:       "atualizar_estoque",
			Parameters: llm.ObjectSchema{Type: "object"},
		}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if res.FunctionCall == nil {
		t.Fatal("expected a function call")
	}
	if res.FunctionCall.Name != "atualizar_estoque" {
		t.Fatalf("function name = %q", res.FunctionCall.Name)
	}
	if res.FunctionCall.Args["produto"] != "Cerveja X" {
		t.Fatalf("args = %v", res.FunctionCall.Args)
	}
	if res.Usage.TotalTokens != 15 {
		t.Fatalf("total tokens = %d, want 15", res.Usage.TotalTokens)
	}

	if gotBody.SystemInstruction == nil || len(gotBody.SystemInstruction.Parts) == 0 {
		t.Fatal("request missing system instruction")
	}
	if len(gotBody.Tools) != 1 || len(gotBody.Tools[0].FunctionDeclarations) != 1 {
		t.Fatalf("request tools = %+v", gotBody.Tools)
	}
}

func TestChatParsesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": "Temos 12 unidades de Vodka Smirnoff."}},
				},
			}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	res, err := c.Chat(context.Background(), llm.Request{Model: "m", Messages: []llm.Message{{Content: "oi"}}})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if res.FunctionCall != nil {
		t.Fatalf("unexpected function call: %+v", res.FunctionCall)
	}
	if res.Text != "Temos 12 unidades de Vodka Smirnoff." {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestChatSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "bad")
	_, err := c.Chat(context.Background(), llm.Request{Model: "m", Messages: []llm.Message{{Content: "oi"}}})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "gemini http 400: API key not valid" {
		t.Fatalf("error = %q", got)
	}
}

func TestToContentsMapsFunctionExchange(t *testing.T) {
	msgs := []llm.Message{
		{Role: llm.RoleUser, Content: "comprei 10 cerveja"},
		{FunctionCall: &llm.FunctionCall{Name: "atualizar_estoque", Args: map[string]any{"produto": "cerveja"}}},
		{FunctionResponse: &llm.FunctionResponse{Name: "atualizar_estoque", Result: map[string]any{"status": "ok"}}},
	}
	contents := toContents(msgs)
	if len(contents) != 3 {
		t.Fatalf("len(contents) = %d, want 3", len(contents))
	}
	if contents[1].Role != llm.RoleModel || contents[1].Parts[0].FunctionCall == nil {
		t.Fatalf("function call content = %+v", contents[1])
	}
	if contents[2].Role != llm.RoleUser || contents[2].Parts[0].FunctionResponse == nil {
		t.Fatalf("function response content = %+v", contents[2])
	}
}
