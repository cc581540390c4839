package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsbot/internal/classify"
)

// Callback data is "action:arg": macro:<name>, branch:<name>, all:macros,
// none:macros, all:branches, none:branches, page:<n>, refresh, noop.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	ack := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(ack); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	action, arg := cb.Data, ""
	if i := strings.IndexByte(cb.Data, ':'); i >= 0 {
		action, arg = cb.Data[:i], cb.Data[i+1:]
	}

	b.log.Debug("callback", "action", action, "arg", arg, "chat_id", chatID)

	switch action {
	case "macro":
		if !classify.IsMacro(arg) {
			return
		}
		prefs, err := b.store.ToggleMacro(ctx, chatID, arg)
		if err != nil {
			b.replyErr(chatID, "update your preferences", err)
			return
		}
		b.editKeyboard(chatID, messageID, MacroKeyboard(prefs))

	case "branch":
		if !classify.IsBranch(arg) {
			return
		}
		prefs, err := b.store.ToggleBranch(ctx, chatID, arg)
		if err != nil {
			b.replyErr(chatID, "update your preferences", err)
			return
		}
		b.editKeyboard(chatID, messageID, BranchKeyboard(prefs))

	case "all", "none":
		b.handleSetAll(ctx, chatID, messageID, action, arg)

	case "refresh":
		b.handleNews(ctx, chatID)

	case "page":
		number, err := strconv.Atoi(arg)
		if err != nil {
			return
		}
		page, ok := b.cachedPage(chatID, number)
		if !ok {
			b.reply(chatID, "That digest has expired, use /news to fetch a fresh one.")
			return
		}
		b.editPage(chatID, messageID, page)
	}
}

func (b *Bot) handleSetAll(ctx context.Context, chatID int64, messageID int, action, arg string) {
	var err error
	switch {
	case arg == "macros" && action == "all":
		err = b.store.SetMacros(ctx, chatID, classify.Macros())
	case arg == "macros" && action == "none":
		err = b.store.SetMacros(ctx, chatID, nil)
	case arg == "branches" && action == "all":
		err = b.store.SetBranches(ctx, chatID, classify.AllBranches())
	case arg == "branches" && action == "none":
		err = b.store.SetBranches(ctx, chatID, nil)
	default:
		return
	}
	if err != nil {
		b.replyErr(chatID, "update your preferences", err)
		return
	}

	prefs, err := b.store.GetOrCreateUser(ctx, chatID)
	if err != nil {
		b.replyErr(chatID, "load your preferences", err)
		return
	}
	if arg == "macros" {
		b.editKeyboard(chatID, messageID, MacroKeyboard(prefs))
	} else {
		b.editKeyboard(chatID, messageID, BranchKeyboard(prefs))
	}
}
