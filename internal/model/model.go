// Package model defines the domain types used across the application.
package model

import "time"

// Source is a single RSS feed the aggregator pulls from.
type Source struct {
	Name string
	URL  string
}

// Article is one candidate item fetched from a feed.
// Identity is the normalized URL; articles are immutable once fetched.
type Article struct {
	Title  string
	URL    string
	Source string
}

// Category is a (macro, branch) pair from the taxonomy.
type Category struct {
	Macro  string
	Branch string
}

// Default category for articles no tier can place.
const (
	MacroDefault  = "Generale"
	BranchDefault = "Altro"
)

// DefaultCategory returns the fallback category, valid for every article.
func DefaultCategory() Category {
	return Category{Macro: MacroDefault, Branch: BranchDefault}
}

// ClassifiedArticle is an Article with its assigned category.
type ClassifiedArticle struct {
	Article
	Category
}

// Preferences holds one user's subscription selections.
// Empty Macros and empty Branches both mean "no filter, match everything".
type Preferences struct {
	ChatID    int64
	Macros    []string
	Branches  []string
	CreatedAt time.Time
}

// HasMacro reports whether the macro is in the user's selection.
func (p *Preferences) HasMacro(macro string) bool {
	return contains(p.Macros, macro)
}

// HasBranch reports whether the branch is in the user's selection.
func (p *Preferences) HasBranch(branch string) bool {
	return contains(p.Branches, branch)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
