// Package classify assigns a (macro, branch) category to article text using
// a lexical keyword tier with an optional semantic-similarity tier on top.
package classify

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"newsbot/internal/model"
)

// Embedder produces vector embeddings for a batch of texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Classifier is a total function over the taxonomy: Classify never fails
// and falls back to the default category when no tier matches.
type Classifier struct {
	entries  []Entry
	embedder Embedder
	cutoff   float64
	vectors  [][]float32
	log      *slog.Logger
}

// NewLexical creates a keyword-only classifier.
func NewLexical(log *slog.Logger) *Classifier {
	return &Classifier{entries: Taxonomy(), log: log}
}

// New creates a classifier with the semantic tier enabled. The category
// description embeddings are computed once here; if that fails the semantic
// tier is disabled for the process lifetime and lexical matching carries on
// alone.
func New(ctx context.Context, embedder Embedder, cutoff float64, log *slog.Logger) *Classifier {
	c := &Classifier{entries: Taxonomy(), cutoff: cutoff, log: log}
	if embedder == nil {
		return c
	}

	texts := make([]string, len(c.entries))
	for i, e := range c.entries {
		texts[i] = e.Description
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil || len(vectors) != len(c.entries) {
		log.Warn("semantic tier disabled", "error", err)
		return c
	}

	c.embedder = embedder
	c.vectors = vectors
	log.Info("semantic tier ready", "categories", len(vectors), "cutoff", cutoff)
	return c
}

// SemanticEnabled reports whether the semantic tier initialized.
func (c *Classifier) SemanticEnabled() bool {
	return c.embedder != nil
}

// Classify assigns a category to the given title and optional body text.
// The semantic tier is consulted first when available; on any model error
// or a best score below the cutoff it falls through to the lexical tier,
// and from there to the default category. Empty input always yields the
// default category.
func (c *Classifier) Classify(ctx context.Context, title, body string) model.Category {
	text := strings.TrimSpace(strings.TrimSpace(title) + " " + strings.TrimSpace(body))
	if text == "" {
		return model.DefaultCategory()
	}

	if c.embedder != nil {
		if cat, ok := c.classifySemantic(ctx, text); ok {
			return cat
		}
	}
	return c.classifyLexical(text)
}

func (c *Classifier) classifySemantic(ctx context.Context, text string) (model.Category, bool) {
	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil || len(vectors) != 1 {
		c.log.Debug("embed article text", "error", err)
		return model.Category{}, false
	}

	best := -1
	bestScore := math.Inf(-1)
	for i, v := range c.vectors {
		score := cosine(vectors[0], v)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore < c.cutoff {
		return model.Category{}, false
	}
	e := c.entries[best]
	return model.Category{Macro: e.Macro, Branch: e.Branch}, true
}

func (c *Classifier) classifyLexical(text string) model.Category {
	lower := strings.ToLower(text)
	for _, e := range c.entries {
		for _, kw := range e.Keywords {
			if strings.Contains(lower, kw) {
				return model.Category{Macro: e.Macro, Branch: e.Branch}
			}
		}
	}
	return model.DefaultCategory()
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
