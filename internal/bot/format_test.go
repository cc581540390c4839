package bot

import (
	"strings"
	"testing"

	"newsbot/internal/digest"
	"newsbot/internal/model"
)

func TestFormatArticleEscapesHTML(t *testing.T) {
	art := model.ClassifiedArticle{
		Article:  model.Article{Title: `Chips <b>& more</b>`, URL: "https://t/1?a=1&b=2", Source: "Wire"},
		Category: model.Category{Macro: "Ingegneria", Branch: "Elettronica"},
	}

	got := FormatArticle(art)

	if !strings.Contains(got, "Chips &lt;b&gt;&amp; more&lt;/b&gt;") {
		t.Errorf("title must be escaped, got:\n%s", got)
	}
	if !strings.Contains(got, "Ingegneria / Elettronica") {
		t.Errorf("category tag missing, got:\n%s", got)
	}
}

func TestFormatPageIndicator(t *testing.T) {
	page := digest.Page{
		Items: []model.ClassifiedArticle{
			{
				Article:  model.Article{Title: "one", URL: "https://t/1"},
				Category: model.Category{Macro: "Generale", Branch: "Altro"},
			},
		},
		Number: 2,
		Total:  5,
	}

	got := FormatPage(page)
	if !strings.Contains(got, "page 2/5") {
		t.Errorf("expected current/total indicator, got:\n%s", got)
	}
	if !strings.Contains(got, "1. ") {
		t.Errorf("expected numbered items, got:\n%s", got)
	}
}

func TestFormatPreferences(t *testing.T) {
	tests := []struct {
		name     string
		prefs    model.Preferences
		contains []string
	}{
		{
			name:     "empty sets read as no filter",
			prefs:    model.Preferences{},
			contains: []string{"Macro-domains: all (no filter)", "Branches: all (no filter)"},
		},
		{
			name: "selections are listed",
			prefs: model.Preferences{
				Macros:   []string{"Finanza", "Politica"},
				Branches: []string{"Mercati"},
			},
			contains: []string{"Finanza, Politica", "Branches: Mercati"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatPreferences(&tt.prefs)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("missing %q in:\n%s", want, got)
				}
			}
		})
	}
}
