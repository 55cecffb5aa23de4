package tools

import (
	"sort"
	"strings"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/llm"
)

// Registry is the closed set of operations the model is allowed to trigger.
// Anything not registered here cannot cause a side effect.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (r *Registry) ToolNames() string {
	all := r.All()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name()
	}
	return strings.Join(names, ", ")
}

// Decls renders the registry as function declarations for the LLM request.
func (r *Registry) Decls() []llm.FunctionDecl {
	all := r.All()
	out := make([]llm.FunctionDecl, 0, len(all))
	for _, t := range all {
		out = append(out, llm.FunctionDecl{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  SchemaFor(t.Params()),
		})
	}
	return out
}

// SchemaFor converts a parameter spec list into the JSON-schema object shape
// the generative endpoint expects.
func SchemaFor(specs []ParamSpec) llm.ObjectSchema {
	schema := llm.ObjectSchema{
		Type:       "object",
		Properties: make(map[string]llm.Property, len(specs)),
	}
	for _, spec := range specs {
		schema.Properties[spec.Name] = llm.Property{
			Type:        string(spec.Type),
			Description: spec.Description,
		}
		if spec.Required {
			schema.Required = append(schema.Required, spec.Name)
		}
	}
	sort.Strings(schema.Required)
	return schema
}
