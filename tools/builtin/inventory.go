// Package builtin registers the operations the model may trigger: stock
// lookup, stock adjustment, direct movement logging and event scheduling.
// Results are JSON strings shaped {"status":"ok",...} or
// {"status":"erro","mensagem":...} so they can be fed straight back to the
// model.
package builtin

import (
	"context"
	"encoding/json"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/inventory"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/tools"
)

func resultJSON(v map[string]any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func errResult(msg string) string {
	return resultJSON(map[string]any{"status": "erro", "mensagem": msg})
}

type GetBalanceTool struct {
	Inventory *inventory.Service
}

func (t *GetBalanceTool) Name() string { return "consultar_estoque" }

func (t *GetBalanceTool) Description() string {
	return "Consulta o saldo atual de um produto no estoque pelo nome (busca parcial, sem diferenciar maiúsculas)."
}

func (t *GetBalanceTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{Name: "produto", Type: tools.TypeString, Description: "Nome (ou parte do nome) do produto.", Required: true},
	}
}

func (t *GetBalanceTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	bal, err := t.Inventory.GetBalance(ctx, tools.StringArg(params, "produto"))
	if err != nil {
		return errResult(err.Error()), err
	}
	if !bal.Found {
		return resultJSON(map[string]any{
			"status":   "nao_encontrado",
			"mensagem": "Produto não encontrado no estoque.",
		}), nil
	}
	return resultJSON(map[string]any{
		"status":     "ok",
		"produto":    bal.Name,
		"quantidade": bal.Quantity,
	}), nil
}

type ApplyDeltaTool struct {
	Inventory *inventory.Service
}

func (t *ApplyDeltaTool) Name() string { return "atualizar_estoque" }

func (t *ApplyDeltaTool) Description() string {
	return "Registra uma compra, venda ou ajuste de estoque: atualiza o saldo do produto e grava a movimentação. Produtos novos são criados automaticamente."
}

func (t *ApplyDeltaTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{Name: "produto", Type: tools.TypeString, Description: "Nome do produto.", Required: true},
		{Name: "quantidade", Type: tools.TypeInt, Description: "Quantidade movimentada.", Required: true},
		{Name: "acao", Type: tools.TypeString, Description: "compra/entrada para entrada, venda/saida para saída, outro valor para ajuste.", Required: true},
		{Name: "responsavel", Type: tools.TypeString, Description: "Quem fez a movimentação.", FromSender: true},
		{Name: "observacao", Type: tools.TypeString, Description: "Observação livre."},
	}
}

func (t *ApplyDeltaTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	res, err := t.Inventory.ApplyDelta(ctx,
		tools.StringArg(params, "produto"),
		tools.IntArg(params, "quantidade"),
		tools.StringArg(params, "acao"),
		tools.StringArg(params, "responsavel"),
		tools.StringArg(params, "observacao"),
	)
	if err != nil {
		return errResult(err.Error()), err
	}
	out := map[string]any{
		"status":  "ok",
		"produto": res.Name,
		"saldo":   res.NewBalance,
		"tipo":    res.Kind,
	}
	if res.Created {
		out["novo_produto"] = true
	}
	return resultJSON(out), nil
}

type LogMovementTool struct {
	Inventory *inventory.Service
}

func (t *LogMovementTool) Name() string { return "registrar_movimentacao" }

func (t *LogMovementTool) Description() string {
	return "Grava uma linha de movimentação no histórico sem alterar o saldo do estoque."
}

func (t *LogMovementTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{Name: "produto", Type: tools.TypeString, Description: "Nome do produto.", Required: true},
		{Name: "quantidade", Type: tools.TypeInt, Description: "Quantidade movimentada.", Required: true},
		{Name: "tipo", Type: tools.TypeString, Description: "Entrada, Saída ou Ajuste."},
		{Name: "responsavel", Type: tools.TypeString, Description: "Quem fez a movimentação.", FromSender: true},
		{Name: "observacao", Type: tools.TypeString, Description: "Observação livre."},
	}
}

func (t *LogMovementTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	err := t.Inventory.LogMovement(ctx,
		tools.StringArg(params, "produto"),
		tools.IntArg(params, "quantidade"),
		tools.StringArg(params, "tipo"),
		tools.StringArg(params, "responsavel"),
		tools.StringArg(params, "observacao"),
	)
	if err != nil {
		return errResult(err.Error()), err
	}
	return resultJSON(map[string]any{"status": "ok", "mensagem": "Movimentação registrada."}), nil
}
