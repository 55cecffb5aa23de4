// Package dispatcher owns the per-user conversation loop: it forwards each
// incoming text to the generative endpoint, executes at most one requested
// operation from the closed registry, and feeds the result back for a final
// natural-language reply.
package dispatcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/llm"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/memory"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/tools"
)

const (
	// FallbackReply is used when the model produces nothing usable.
	FallbackReply = "Desculpe, não consegui entender. Pode reformular?"
	// apologyReply is used when the generative endpoint itself fails.
	apologyReply = "Desculpe, estou com problemas para responder agora. Tente novamente em instantes."
	// badArgsReply is used when the model requests an operation with
	// invalid or missing arguments.
	badArgsReply = "Não consegui executar a operação: parâmetros inválidos."

	defaultHistoryMax = 20
)

type Incoming struct {
	UserID      int64
	ChatID      int64
	DisplayName string
	Text        string
}

type session struct {
	id      string
	history []llm.Message
}

// Dispatcher holds one session per user for the lifetime of the process.
// Sessions move NEW -> ACTIVE on the first message and stay active until
// restart; the AI-side dialogue history is not persisted.
type Dispatcher struct {
	Client       llm.Client
	Model        string
	Registry     *tools.Registry
	Memory       *memory.Manager
	Logger       *slog.Logger
	SystemPrompt string
	HistoryMax   int

	mu       sync.Mutex
	sessions map[int64]*session
}

func New(client llm.Client, model string, registry *tools.Registry, mem *memory.Manager, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		Client:       client,
		Model:        model,
		Registry:     registry,
		Memory:       mem,
		Logger:       logger,
		SystemPrompt: DefaultSystemPrompt,
		HistoryMax:   defaultHistoryMax,
		sessions:     make(map[int64]*session),
	}
}

// ActiveSessions reports how many users have an active session.
func (d *Dispatcher) ActiveSessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// HandleMessage runs one conversation turn and returns the reply text. Every
// failure degrades to a user-facing sentence; nothing is retried.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg Incoming) string {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return FallbackReply
	}

	sess := d.ensureSession(ctx, msg.UserID)
	log := d.Logger.With("user_id", msg.UserID, "session_id", sess.id)

	if err := d.Memory.RecordMessage(ctx, msg.UserID, text); err != nil {
		log.Warn("memory_record_error", "error", err.Error())
	}

	history := d.snapshotHistory(msg.UserID)
	msgs := append(history, llm.Message{Role: llm.RoleUser, Content: text})

	start := time.Now()
	res, err := d.Client.Chat(ctx, llm.Request{
		Model:    d.Model,
		System:   d.SystemPrompt,
		Messages: msgs,
		Tools:    d.Registry.Decls(),
	})
	if err != nil {
		log.Error("llm_call_error", "error", err.Error())
		return apologyReply
	}
	log.Debug("llm_call_done", "duration_ms", time.Since(start).Milliseconds(), "total_tokens", res.Usage.TotalTokens)

	reply := ""
	switch {
	case res.FunctionCall != nil:
		reply = d.runFunctionCall(ctx, log, msgs, res, msg)
	case strings.TrimSpace(res.Text) != "":
		reply = strings.TrimSpace(res.Text)
	}
	if reply == "" {
		reply = FallbackReply
	}

	d.appendHistory(msg.UserID, text, reply)
	if err := d.Memory.SaveSummary(ctx, msg.UserID, reply); err != nil {
		log.Warn("memory_summary_error", "error", err.Error())
	}
	return reply
}

// runFunctionCall validates and executes the requested operation, then asks
// the model to phrase the result. A failed rephrase degrades to the raw
// operation result.
func (d *Dispatcher) runFunctionCall(ctx context.Context, log *slog.Logger, msgs []llm.Message, res llm.Result, msg Incoming) string {
	fc := res.FunctionCall
	tool, ok := d.Registry.Get(fc.Name)
	if !ok {
		log.Warn("function_unknown", "name", fc.Name, "available", d.Registry.ToolNames())
		return FallbackReply
	}

	args, err := tools.CoerceArgs(tool, fc.Args, msg.DisplayName)
	if err != nil {
		log.Warn("function_bad_args", "name", fc.Name, "error", err.Error())
		return badArgsReply
	}

	start := time.Now()
	observation, execErr := tool.Execute(ctx, args)
	if execErr != nil {
		log.Warn("tool_done", "tool", fc.Name, "duration_ms", time.Since(start).Milliseconds(), "error", execErr.Error())
	} else {
		log.Info("tool_done", "tool", fc.Name, "duration_ms", time.Since(start).Milliseconds())
	}
	if strings.TrimSpace(observation) == "" {
		return FallbackReply
	}

	followUp := append(msgs,
		llm.Message{FunctionCall: fc},
		llm.Message{FunctionResponse: &llm.FunctionResponse{Name: fc.Name, Result: observationResult(observation)}},
	)
	rephrased, err := d.Client.Chat(ctx, llm.Request{
		Model:    d.Model,
		System:   d.SystemPrompt,
		Messages: followUp,
		Tools:    d.Registry.Decls(),
	})
	if err != nil || strings.TrimSpace(rephrased.Text) == "" {
		if err != nil {
			log.Warn("rephrase_error", "tool", fc.Name, "error", err.Error())
		}
		return observation
	}
	return strings.TrimSpace(rephrased.Text)
}

func (d *Dispatcher) ensureSession(ctx context.Context, userID int64) *session {
	d.mu.Lock()
	if s, ok := d.sessions[userID]; ok {
		d.mu.Unlock()
		return s
	}
	s := &session{id: uuid.NewString()}
	d.sessions[userID] = s
	d.mu.Unlock()

	rec, found, err := d.Memory.Recall(ctx, userID)
	if err != nil {
		d.Logger.Warn("memory_recall_error", "user_id", userID, "error", err.Error())
	}
	if found {
		if hint := memory.PrimingHint(rec); hint != "" {
			d.mu.Lock()
			s.history = append(s.history,
				llm.Message{Role: llm.RoleUser, Content: hint},
				llm.Message{Role: llm.RoleModel, Content: "Entendido."},
			)
			d.mu.Unlock()
		}
	}
	d.Logger.Info("session_start", "user_id", userID, "session_id", s.id, "primed", found)
	return s
}

func (d *Dispatcher) snapshotHistory(userID int64) []llm.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.sessions[userID]
	return append([]llm.Message(nil), s.history...)
}

func (d *Dispatcher) appendHistory(userID int64, userText, reply string) {
	max := d.HistoryMax
	if max <= 0 {
		max = defaultHistoryMax
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.sessions[userID]
	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Content: userText},
		llm.Message{Role: llm.RoleModel, Content: reply},
	)
	if len(s.history) > max {
		s.history = s.history[len(s.history)-max:]
	}
}

// observationResult decodes a tool's JSON result for the function-response
// message, wrapping non-JSON output as-is.
func observationResult(observation string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(observation), &out); err == nil {
		return out
	}
	return map[string]any{"resultado": observation}
}
