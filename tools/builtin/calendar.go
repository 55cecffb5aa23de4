package builtin

import (
	"context"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/gcal"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/tools"
)

// Scheduler is the slice of the calendar client this tool needs.
type Scheduler interface {
	ScheduleEvent(ctx context.Context, title, description, date, timeOfDay string, durationMinutes int) (gcal.EventResult, error)
}

type ScheduleEventTool struct {
	Calendar Scheduler
}

func (t *ScheduleEventTool) Name() string { return "agendar_evento" }

func (t *ScheduleEventTool) Description() string {
	return "Cria um evento na agenda do depósito (entrega, visita de fornecedor, etc)."
}

func (t *ScheduleEventTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{Name: "titulo", Type: tools.TypeString, Description: "Título do evento.", Required: true},
		{Name: "descricao", Type: tools.TypeString, Description: "Descrição do evento."},
		{Name: "data", Type: tools.TypeString, Description: "Data no formato dd/mm/aaaa.", Required: true},
		{Name: "hora", Type: tools.TypeString, Description: "Hora no formato HH:MM.", Required: true},
		{Name: "duracao_minutos", Type: tools.TypeInt, Description: "Duração em minutos (padrão 60)."},
	}
}

func (t *ScheduleEventTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	res, err := t.Calendar.ScheduleEvent(ctx,
		tools.StringArg(params, "titulo"),
		tools.StringArg(params, "descricao"),
		tools.StringArg(params, "data"),
		tools.StringArg(params, "hora"),
		tools.IntArg(params, "duracao_minutos"),
	)
	if err != nil {
		return errResult(res.Message), err
	}
	out := map[string]any{"status": res.Status, "mensagem": res.Message}
	if res.Link != "" {
		out["link"] = res.Link
	}
	return resultJSON(out), nil
}
