package tools

import "context"

// ParamType is the closed set of argument types an operation may declare.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeInt    ParamType = "integer"
)

// ParamSpec declares one named argument of an operation. FromSender marks a
// parameter that defaults to the message sender's display name when the model
// omits it.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	FromSender  bool
}

// Tool is one operation the model may request by name. Execute receives
// arguments already validated and coerced against Params.
type Tool interface {
	Name() string
	Description() string
	Params() []ParamSpec
	Execute(ctx context.Context, params map[string]any) (string, error)
}
