// Package bot answers health questions sent to a Telegram bot.
package bot

import (
	"context"
	"fmt"
	"github.com/apomuden/apomuden/internal/answer"
	"github.com/apomuden/apomuden/internal/db"
	"github.com/apomuden/apomuden/internal/lang"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	cmdStart = "start"
	cmdHelp  = "help"
)

const usage = `Welcome to Apomuden!

Ask me any health question in English or Akan (Twi) and I will do my best to answer it.

Examples:
- What are the symptoms of malaria?
- Dɛn na ɛma atiridii ba?

I am not a doctor. In an emergency, call 112 or go to the nearest hospital.

Commands:
/start - show this message
/help - show this message`

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api      Sender
	resolver *answer.Resolver
	// Queries is optional, when set every answered message is logged.
	Queries *db.Queries
	Logger  *slog.Logger
}

func New(api Sender, resolver *answer.Resolver) *Bot {
	return &Bot{api: api, resolver: resolver}
}

// Connect logs in with token and returns the API client.
func Connect(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	api.Debug = debug
	return api, nil
}

// Start long polls api for updates until ctx is done.
func Start(ctx context.Context, api *tgbotapi.BotAPI, b *Bot) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	b.logger().Info("starting telegram bot", "user", api.Self.UserName)
	b.Run(ctx, updates)
	return nil
}

// Run handles updates until the channel is closed or ctx is done. Messages
// are answered concurrently.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			wg.Add(1)
			go func(m *tgbotapi.Message) {
				defer wg.Done()
				b.handleMessage(ctx, m)
			}(update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	logger := b.logger().With("chat_id", m.Chat.ID)
	if m.IsCommand() {
		switch m.Command() {
		case cmdStart, cmdHelp:
			b.send(logger, m.Chat.ID, usage)
		default:
			b.send(logger, m.Chat.ID, "Unknown command. Use /help to see what I can do.")
		}
		return
	}
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}

	start := time.Now()
	res, err := b.resolver.Resolve(ctx, answer.Question{Text: text, Language: string(lang.Auto)})
	if err != nil {
		logger.Error("failed to resolve message", "err", err)
		b.send(logger, m.Chat.ID, answer.Apology(lang.Detect(text)))
		return
	}
	logger.Info("answered message", "source", res.Source, "language", res.Language, "took", time.Since(start))
	b.send(logger, m.Chat.ID, Format(res))
	b.record(ctx, logger, text, res, time.Since(start))
}

func (b *Bot) record(ctx context.Context, logger *slog.Logger, text string, res answer.Result, took time.Duration) {
	if b.Queries == nil {
		return
	}
	err := b.Queries.LogQuery(ctx, db.QueryLog{
		Query: db.QueryData{Question: text, Language: string(lang.Auto)},
		Response: db.ResponseData{
			Response:    res.Answer,
			Confidence:  res.Confidence,
			Language:    res.Language,
			ModelUsed:   res.Source,
			IsEmergency: res.IsEmergency,
			IsError:     res.IsError,
		},
		ProcessingTime: took.Seconds(),
		Timestamp:      res.Timestamp,
	})
	if err != nil {
		logger.Error("failed to log query", "err", err)
	}
}

func (b *Bot) send(logger *slog.Logger, chatID int64, text string) {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		logger.Error("failed to send message", "err", err)
	}
}

func (b *Bot) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

var sourceLabel = map[lang.Code]string{
	lang.English: "Source",
	lang.Akan:    "Fibea",
}

// Format renders a result as a chat reply: the answer followed by a source
// line. Errors get no source line.
func Format(res answer.Result) string {
	if res.IsError {
		return res.Answer
	}
	label := lang.Pick(sourceLabel, res.Language)
	return fmt.Sprintf("%s\n\n%s: %s (%.0f%%)", res.Answer, label, res.Source, res.ConfidenceValue()*100)
}
