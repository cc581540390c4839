// Package digest selects the classified articles a user should receive and
// paginates them for delivery.
package digest

import (
	"context"
	"fmt"

	"newsbot/internal/model"
	"newsbot/internal/storage"
)

// Builder filters the current cycle's articles against a user's
// preferences and sent-history.
type Builder struct {
	store    storage.Storage
	maxItems int
}

// NewBuilder creates a Builder capping each digest at maxItems.
func NewBuilder(store storage.Storage, maxItems int) *Builder {
	return &Builder{store: store, maxItems: maxItems}
}

// Matches reports whether an article passes the user's preference filter.
// An empty macro set and an empty branch set each mean "no filter, match
// everything"; both clauses honor that independently.
func Matches(prefs *model.Preferences, art model.ClassifiedArticle) bool {
	if len(prefs.Macros) > 0 && !prefs.HasMacro(art.Macro) {
		return false
	}
	if len(prefs.Branches) > 0 && !prefs.HasBranch(art.Branch) {
		return false
	}
	return true
}

// BuildForUser returns the ordered subset of articles the user should
// receive: preference-matched, not already in sent-history, capped at the
// digest maximum. Input order is preserved. It does not mark anything as
// sent; that happens after delivery succeeds.
func (b *Builder) BuildForUser(ctx context.Context, chatID int64, articles []model.ClassifiedArticle) ([]model.ClassifiedArticle, error) {
	prefs, err := b.store.GetOrCreateUser(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	var matched []model.ClassifiedArticle
	for _, a := range articles {
		if Matches(prefs, a) {
			matched = append(matched, a)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	keys := make([]string, len(matched))
	for i, a := range matched {
		keys[i] = model.NormalizeURL(a.URL)
	}
	unsent, err := b.store.FilterUnsent(ctx, chatID, keys)
	if err != nil {
		return nil, fmt.Errorf("filter sent history: %w", err)
	}
	eligible := make(map[string]struct{}, len(unsent))
	for _, u := range unsent {
		eligible[u] = struct{}{}
	}

	var out []model.ClassifiedArticle
	for i, a := range matched {
		if _, ok := eligible[keys[i]]; !ok {
			continue
		}
		out = append(out, a)
		if len(out) >= b.maxItems {
			break
		}
	}
	return out, nil
}

// Page is one fixed-size slice of a digest, numbered from 1.
type Page struct {
	Items  []model.ClassifiedArticle
	Number int
	Total  int
}

// Paginate splits items into pages of pageSize. The last page may be
// shorter; an empty input yields no pages.
func Paginate(items []model.ClassifiedArticle, pageSize int) []Page {
	if len(items) == 0 || pageSize <= 0 {
		return nil
	}
	total := (len(items) + pageSize - 1) / pageSize
	pages := make([]Page, 0, total)
	for i := 0; i < len(items); i += pageSize {
		end := i + pageSize
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, Page{
			Items:  items[i:end],
			Number: len(pages) + 1,
			Total:  total,
		})
	}
	return pages
}
