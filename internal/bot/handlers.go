package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsbot/internal/classify"
	"newsbot/internal/digest"
)

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if _, err := b.store.GetOrCreateUser(ctx, chatID); err != nil {
		b.log.Error("create user", "chat_id", chatID, "error", err)
		b.reply(chatID, "Could not register you right now, please try again.")
		return
	}

	b.reply(chatID, `Welcome to the news digest bot!

Pick the topics you care about and receive a daily digest of matching
articles. With no topics selected you receive everything.

Quick start:
1. /domains — choose macro-domains
2. /branches — narrow down to branches
3. /news — fetch a digest right now

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Preferences:
/domains — toggle macro-domains
/branches — toggle branches
/preferences — show current selections
/all — select every domain and branch
/reset — clear selections (receive everything)

Digest:
/news — fetch a digest on demand

The daily digest is delivered automatically every morning.`)
}

func (b *Bot) handleDomains(ctx context.Context, chatID int64) {
	prefs, err := b.store.GetOrCreateUser(ctx, chatID)
	if err != nil {
		b.log.Error("load preferences", "chat_id", chatID, "error", err)
		b.reply(chatID, "Could not load your preferences, please try again.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Select your macro-domains:")
	msg.ReplyMarkup = MacroKeyboard(prefs)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send domains keyboard", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleBranches(ctx context.Context, chatID int64) {
	prefs, err := b.store.GetOrCreateUser(ctx, chatID)
	if err != nil {
		b.log.Error("load preferences", "chat_id", chatID, "error", err)
		b.reply(chatID, "Could not load your preferences, please try again.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Select your branches:")
	msg.ReplyMarkup = BranchKeyboard(prefs)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send branches keyboard", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handlePreferences(ctx context.Context, chatID int64) {
	prefs, err := b.store.GetOrCreateUser(ctx, chatID)
	if err != nil {
		b.log.Error("load preferences", "chat_id", chatID, "error", err)
		b.reply(chatID, "Could not load your preferences, please try again.")
		return
	}
	b.reply(chatID, FormatPreferences(prefs))
}

func (b *Bot) handleAll(ctx context.Context, chatID int64) {
	if err := b.store.SetMacros(ctx, chatID, classify.Macros()); err != nil {
		b.log.Error("set macros", "chat_id", chatID, "error", err)
		b.reply(chatID, "Could not update your preferences, please try again.")
		return
	}
	if err := b.store.SetBranches(ctx, chatID, classify.AllBranches()); err != nil {
		b.log.Error("set branches", "chat_id", chatID, "error", err)
		b.reply(chatID, "Could not update your preferences, please try again.")
		return
	}
	b.reply(chatID, "All domains and branches selected.")
}

func (b *Bot) handleReset(ctx context.Context, chatID int64) {
	if err := b.store.ResetPreferences(ctx, chatID); err != nil {
		b.log.Error("reset preferences", "chat_id", chatID, "error", err)
		b.reply(chatID, "Could not reset your preferences, please try again.")
		return
	}
	b.reply(chatID, "Preferences cleared. You now receive articles from every category.")
}

// handleNews runs the on-demand digest, gated by the rate limiter.
func (b *Bot) handleNews(ctx context.Context, chatID int64) {
	if !b.limiter.Allow(chatID) {
		b.reply(chatID, "Too many requests, give it a moment before asking again.")
		return
	}

	items, err := b.pipeline.RunForUser(ctx, chatID)
	if err != nil {
		b.log.Error("on-demand digest", "chat_id", chatID, "error", err)
		b.reply(chatID, "Could not build your digest right now, please try again.")
		return
	}
	if len(items) == 0 {
		b.reply(chatID, "No new articles matching your preferences right now.")
		return
	}

	pages := digest.Paginate(items, b.pageSize)
	b.cachePages(chatID, pages)

	msg := tgbotapi.NewMessage(chatID, FormatPage(pages[0]))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = PageKeyboard(pages[0])
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send digest page", "chat_id", chatID, "error", err)
		return
	}

	// The whole digest was handed to the user, so the full item set is
	// recorded, not just the first page.
	b.pipeline.MarkDelivered(ctx, chatID, items)
	b.log.Info("on-demand digest sent", "chat_id", chatID, "items", len(items), "pages", len(pages))
}

func (b *Bot) editKeyboard(chatID int64, messageID int, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup)
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("edit keyboard", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) editPage(chatID int64, messageID int, page digest.Page) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, FormatPage(page), PageKeyboard(page))
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("edit digest page", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) replyErr(chatID int64, action string, err error) {
	b.log.Error(action, "chat_id", chatID, "error", err)
	b.reply(chatID, fmt.Sprintf("Could not %s, please try again.", action))
}
