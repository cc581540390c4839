// Package bot implements the Telegram front-end: commands, preference
// keyboards, and digest delivery.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsbot/internal/digest"
	"newsbot/internal/model"
	"newsbot/internal/ratelimit"
	"newsbot/internal/scheduler"
	"newsbot/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram bot that handles user commands and delivers digests.
type Bot struct {
	api      telegramAPI
	store    storage.Storage
	limiter  *ratelimit.Limiter
	pipeline *scheduler.Pipeline
	pageSize int
	log      *slog.Logger

	mu    sync.Mutex
	pages map[int64][]digest.Page
}

// New creates a Bot with the given Telegram token, storage, and limiter.
// The pipeline is attached afterwards via SetPipeline since it needs the
// bot as its delivery sender.
func New(token string, store storage.Storage, limiter *ratelimit.Limiter, pageSize int, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:      api,
		store:    store,
		limiter:  limiter,
		pageSize: pageSize,
		log:      log,
		pages:    make(map[int64][]digest.Page),
	}, nil
}

// SetPipeline attaches the on-demand digest pipeline.
func (b *Bot) SetPipeline(p *scheduler.Pipeline) {
	b.pipeline = p
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// SendArticle delivers one classified article to a chat. It implements
// scheduler.Sender; a non-nil error keeps the article unmarked.
func (b *Bot) SendArticle(chatID int64, art model.ClassifiedArticle) error {
	msg := tgbotapi.NewMessage(chatID, FormatArticle(art))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send article: %w", err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.handleHelp(chatID)
	case "domains":
		b.handleDomains(ctx, chatID)
	case "branches":
		b.handleBranches(ctx, chatID)
	case "preferences":
		b.handlePreferences(ctx, chatID)
	case "all":
		b.handleAll(ctx, chatID)
	case "reset":
		b.handleReset(ctx, chatID)
	case "news":
		b.handleNews(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}

func (b *Bot) cachePages(chatID int64, pages []digest.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages[chatID] = pages
}

func (b *Bot) cachedPage(chatID int64, number int) (digest.Page, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pages := b.pages[chatID]
	if number < 1 || number > len(pages) {
		return digest.Page{}, false
	}
	return pages[number-1], true
}
