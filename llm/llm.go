package llm

import (
	"context"
	"time"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of the dialogue. Exactly one of Content, FunctionCall
// or FunctionResponse is meaningful per message.
type Message struct {
	Role             string            `json:"role"`
	Content          string            `json:"content,omitempty"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
}

// FunctionCall is a structured operation request emitted by the model.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// FunctionResponse feeds an executed operation's result back to the model.
type FunctionResponse struct {
	Name   string         `json:"name"`
	Result map[string]any `json:"result"`
}

// FunctionDecl declares one callable operation to the model.
type FunctionDecl struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Parameters  ObjectSchema `json:"parameters"`
}

// ObjectSchema is the JSON-schema subset generative endpoints accept for
// function parameters.
type ObjectSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type Result struct {
	Text         string
	FunctionCall *FunctionCall
	Usage        Usage
	Duration     time.Duration
}

type Request struct {
	Model    string
	System   string
	Messages []Message
	Tools    []FunctionDecl
}

type Client interface {
	Chat(ctx context.Context, req Request) (Result, error)
}
