package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/internal/telegram"
)

func newTelegramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the bot with getUpdates long polling",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			return runPolling(ctx, a,
				viper.GetDuration("telegram.poll_timeout"),
				viper.GetInt("telegram.max_concurrency"))
		},
	}

	cmd.Flags().Duration("telegram-poll-timeout", 30*time.Second, "Long polling timeout for getUpdates.")
	cmd.Flags().Int("telegram-max-concurrency", 3, "Maximum turns processed in parallel across chats.")
	_ = viper.BindPFlag("telegram.poll_timeout", cmd.Flags().Lookup("telegram-poll-timeout"))
	_ = viper.BindPFlag("telegram.max_concurrency", cmd.Flags().Lookup("telegram-max-concurrency"))

	return cmd
}

type chatJob struct {
	ChatID    int64
	MessageID int64
	Message   *telegram.Message
}

// chatWorker serializes turns within one chat; the global semaphore caps
// how many chats run a turn at the same time.
type chatWorker struct {
	jobs chan chatJob
}

func runPolling(ctx context.Context, a *app, pollTimeout time.Duration, maxConcurrency int) error {
	me, err := a.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	a.logger.Info("telegram_start", "bot", "@"+me.Username, "bot_id", me.ID, "poll_timeout", pollTimeout.String())

	if maxConcurrency <= 0 {
		maxConcurrency = 3
	}
	sem := make(chan struct{}, maxConcurrency)
	workers := make(map[int64]*chatWorker)

	startWorker := func(chatID int64) *chatWorker {
		if w, ok := workers[chatID]; ok {
			return w
		}
		w := &chatWorker{jobs: make(chan chatJob, 16)}
		workers[chatID] = w
		go func() {
			for job := range w.jobs {
				sem <- struct{}{}
				a.handleIncoming(ctx, job.ChatID, job.MessageID, incomingFromMessage(job.Message))
				<-sem
			}
		}()
		return w
	}

	var offset int64
	for {
		updates, next, err := a.api.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				a.logger.Info("telegram_stop", "reason", "context_canceled")
				return nil
			}
			if telegram.IsPollTimeout(err) {
				a.logger.Debug("telegram_get_updates_timeout", "error", err.Error())
			} else {
				a.logger.Warn("telegram_get_updates_error", "error", err.Error())
			}
			time.Sleep(1 * time.Second)
			continue
		}
		offset = next

		for _, u := range updates {
			msg := u.IncomingMessage()
			if msg == nil || msg.Chat == nil {
				continue
			}
			if msg.From != nil && msg.From.IsBot {
				continue
			}
			if msg.BodyText() == "" {
				continue
			}
			w := startWorker(msg.Chat.ID)
			select {
			case w.jobs <- chatJob{ChatID: msg.Chat.ID, MessageID: msg.MessageID, Message: msg}:
			default:
				a.logger.Warn("telegram_queue_full", "chat_id", msg.Chat.ID, "message_id", msg.MessageID)
			}
		}
	}
}
