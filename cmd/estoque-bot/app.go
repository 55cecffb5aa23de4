package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	calendarapi "google.golang.org/api/calendar/v3"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/dispatcher"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/gcal"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/internal/fsstore"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/internal/googleauth"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/internal/logutil"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/internal/telegram"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/inventory"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/memory"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/providers/gemini"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/sheets"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/tools"
	"github.com/samuel-rocha-gestao-trafego/estoque-bot/tools/builtin"
)

// app wires the whole bot: every dependency is constructed once here and
// passed down explicitly, nothing reads viper after startup.
type app struct {
	logger *slog.Logger
	api    *telegram.API
	disp   *dispatcher.Dispatcher
}

func buildApp(ctx context.Context) (*app, error) {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	token := strings.TrimSpace(viper.GetString("telegram.bot_token"))
	if token == "" {
		return nil, fmt.Errorf("missing telegram.bot_token (set via config or ESTOQUE_BOT_TELEGRAM_BOT_TOKEN)")
	}
	apiKey := strings.TrimSpace(viper.GetString("gemini.api_key"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing gemini.api_key (set via config or ESTOQUE_BOT_GEMINI_API_KEY)")
	}

	key, err := googleauth.LoadKey(viper.GetString("google.credentials_file"), viper.GetString("google.credentials_json"))
	if err != nil {
		return nil, err
	}
	httpClient, err := googleauth.HTTPClient(ctx, key, sheetsapi.SpreadsheetsScope, calendarapi.CalendarEventsScope)
	if err != nil {
		return nil, err
	}

	tz := viper.GetString("calendar.timezone")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar.timezone %q: %w", tz, err)
	}

	sheetClient, err := sheets.New(ctx, httpClient, viper.GetString("sheets.spreadsheet_id"))
	if err != nil {
		return nil, err
	}
	inv := inventory.NewService(sheetClient,
		viper.GetString("sheets.stock_tab"),
		viper.GetString("sheets.movement_tab"),
		loc)

	cal, err := gcal.New(ctx, httpClient, viper.GetString("calendar.id"), loc)
	if err != nil {
		return nil, err
	}

	reg := tools.NewRegistry()
	reg.Register(&builtin.GetBalanceTool{Inventory: inv})
	reg.Register(&builtin.ApplyDeltaTool{Inventory: inv})
	reg.Register(&builtin.LogMovementTool{Inventory: inv})
	reg.Register(&builtin.ScheduleEventTool{Calendar: cal})

	mem, err := memoryFromViper()
	if err != nil {
		return nil, err
	}

	client := gemini.New(viper.GetString("gemini.endpoint"), apiKey)
	disp := dispatcher.New(client, viper.GetString("gemini.model"), reg, mem, logger)
	if n := viper.GetInt("telegram.history_max_messages"); n > 0 {
		disp.HistoryMax = n
	}

	logger.Info("app_ready",
		"model", viper.GetString("gemini.model"),
		"tools", reg.ToolNames(),
		"memory_backend", viper.GetString("memory.backend"),
		"timezone", loc.String())

	return &app{
		logger: logger,
		api:    telegram.NewAPI(nil, "", token),
		disp:   disp,
	}, nil
}

func memoryFromViper() (*memory.Manager, error) {
	window := viper.GetInt("memory.window")
	if !viper.GetBool("memory.enabled") {
		// A nil store makes the manager a no-op.
		return memory.NewManager(nil, window), nil
	}
	dir := viper.GetString("memory.dir")
	if err := fsstore.EnsureDir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create memory.dir: %w", err)
	}
	switch backend := strings.ToLower(strings.TrimSpace(viper.GetString("memory.backend"))); backend {
	case "", "file":
		return memory.NewManager(memory.NewFileStore(dir), window), nil
	case "sqlite":
		store, err := memory.NewSQLiteStore(filepath.Join(dir, "memory.db"))
		if err != nil {
			return nil, err
		}
		return memory.NewManager(store, window), nil
	default:
		return nil, fmt.Errorf("unknown memory.backend: %s", backend)
	}
}

// handleIncoming runs one conversation turn for a message that already passed
// the transport-level filters and delivers the reply.
func (a *app) handleIncoming(ctx context.Context, chatID, messageID int64, in dispatcher.Incoming) {
	_ = a.api.SendChatAction(ctx, chatID, "typing")
	reply := a.disp.HandleMessage(ctx, in)
	if err := a.api.SendMessageReply(ctx, chatID, reply, messageID); err != nil {
		a.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}

// incomingFromMessage maps a transport message onto a dispatcher turn.
// Channel posts have no sender, so the chat id keys the session.
func incomingFromMessage(msg *telegram.Message) dispatcher.Incoming {
	in := dispatcher.Incoming{
		ChatID: msg.Chat.ID,
		UserID: msg.Chat.ID,
		Text:   msg.BodyText(),
	}
	if msg.From != nil {
		in.UserID = msg.From.ID
		in.DisplayName = telegram.DisplayName(msg.From)
	}
	return in
}
