package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsbot/internal/classify"
	"newsbot/internal/digest"
	"newsbot/internal/model"
)

// MacroKeyboard builds the macro-domain toggle keyboard. Selected entries
// carry a checkmark.
func MacroKeyboard(prefs *model.Preferences) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, macro := range classify.Macros() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel(macro, prefs.HasMacro(macro)), "macro:"+macro),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Select all", "all:macros"),
		tgbotapi.NewInlineKeyboardButtonData("Clear", "none:macros"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 News now", "refresh:"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// BranchKeyboard builds the branch toggle keyboard, two branches per row,
// grouped in taxonomy order.
func BranchKeyboard(prefs *model.Preferences) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, branch := range classify.AllBranches() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			toggleLabel(branch, prefs.HasBranch(branch)), "branch:"+branch,
		))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Select all", "all:branches"),
		tgbotapi.NewInlineKeyboardButtonData("Clear", "none:branches"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// PageKeyboard builds prev/next navigation for a digest page.
func PageKeyboard(page digest.Page) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if page.Number > 1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("◀", fmt.Sprintf("page:%d", page.Number-1)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("%d/%d", page.Number, page.Total), "noop:"),
	)
	if page.Number < page.Total {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("▶", fmt.Sprintf("page:%d", page.Number+1)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func toggleLabel(name string, selected bool) string {
	if selected {
		return "✔ " + name
	}
	return name
}
