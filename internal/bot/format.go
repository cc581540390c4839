package bot

import (
	"fmt"
	"html"
	"strings"

	"newsbot/internal/digest"
	"newsbot/internal/model"
)

// FormatArticle renders one classified article as an HTML Telegram message.
func FormatArticle(art model.ClassifiedArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📌 <b>%s</b>\n", html.EscapeString(art.Title))
	fmt.Fprintf(&b, "🏷 %s / %s", art.Macro, art.Branch)
	if art.Source != "" {
		fmt.Fprintf(&b, " — %s", html.EscapeString(art.Source))
	}
	fmt.Fprintf(&b, "\n\n<a href=\"%s\">Read more</a>", html.EscapeString(art.URL))
	return b.String()
}

// FormatPage renders one digest page with its current/total indicator.
func FormatPage(page digest.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 <b>Your digest</b> — page %d/%d\n", page.Number, page.Total)
	for i, art := range page.Items {
		fmt.Fprintf(&b, "\n%d. <a href=\"%s\">%s</a>\n   🏷 %s / %s\n",
			i+1, html.EscapeString(art.URL), html.EscapeString(art.Title), art.Macro, art.Branch)
	}
	return b.String()
}

// FormatPreferences renders the user's current selections.
func FormatPreferences(prefs *model.Preferences) string {
	var b strings.Builder
	b.WriteString("Your preferences:\n\n")

	b.WriteString("Macro-domains: ")
	if len(prefs.Macros) == 0 {
		b.WriteString("all (no filter)")
	} else {
		b.WriteString(strings.Join(prefs.Macros, ", "))
	}

	b.WriteString("\nBranches: ")
	if len(prefs.Branches) == 0 {
		b.WriteString("all (no filter)")
	} else {
		b.WriteString(strings.Join(prefs.Branches, ", "))
	}

	b.WriteString("\n\nUse /domains and /branches to change them.")
	return b.String()
}
