// Package scheduler drives the aggregate-classify-digest pipeline, both on
// the recurring daily cycle and on demand.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"newsbot/internal/aggregator"
	"newsbot/internal/classify"
	"newsbot/internal/digest"
	"newsbot/internal/model"
	"newsbot/internal/storage"
)

// Sender delivers one classified article to a chat. A non-nil error means
// the article was not delivered and must stay eligible for a later cycle.
type Sender interface {
	SendArticle(chatID int64, art model.ClassifiedArticle) error
}

// Pipeline is the single fetch-classify-deliver path shared by the daily
// cycle and the on-demand digest.
type Pipeline struct {
	agg        *aggregator.Aggregator
	classifier *classify.Classifier
	builder    *digest.Builder
	store      storage.Storage
	sender     Sender
	retention  time.Duration
	log        *slog.Logger
}

// NewPipeline wires the pipeline components together.
func NewPipeline(agg *aggregator.Aggregator, c *classify.Classifier, b *digest.Builder, store storage.Storage, sender Sender, retention time.Duration, log *slog.Logger) *Pipeline {
	return &Pipeline{
		agg:        agg,
		classifier: c,
		builder:    b,
		store:      store,
		sender:     sender,
		retention:  retention,
		log:        log,
	}
}

// Collect fetches the current candidates and classifies each one.
func (p *Pipeline) Collect(ctx context.Context) []model.ClassifiedArticle {
	candidates := p.agg.FetchAll(ctx)
	classified := make([]model.ClassifiedArticle, 0, len(candidates))
	for _, art := range candidates {
		classified = append(classified, model.ClassifiedArticle{
			Article:  art,
			Category: p.classifier.Classify(ctx, art.Title, ""),
		})
	}
	return classified
}

// RunCycle runs one full digest cycle for every known user. Failures for a
// single user or a single article are logged and never abort the cycle.
func (p *Pipeline) RunCycle(ctx context.Context) {
	articles := p.Collect(ctx)
	if len(articles) == 0 {
		p.log.Info("cycle produced no candidates")
		return
	}

	users, err := p.store.ListUsers(ctx)
	if err != nil {
		p.log.Error("list users", "error", err)
		return
	}

	for _, chatID := range users {
		if ctx.Err() != nil {
			return
		}
		p.deliverTo(ctx, chatID, articles)
	}

	if _, err := p.store.PruneSentBefore(ctx, time.Now().Add(-p.retention)); err != nil {
		p.log.Error("prune sent history", "error", err)
	}
}

// RunForUser runs the same aggregate-classify-digest path for a single user
// and returns the items instead of delivering them in the background. The
// caller delivers the digest and records it via MarkDelivered.
func (p *Pipeline) RunForUser(ctx context.Context, chatID int64) ([]model.ClassifiedArticle, error) {
	return p.builder.BuildForUser(ctx, chatID, p.Collect(ctx))
}

// MarkDelivered records articles in the user's sent-history. A failed write
// is logged and the article stays unmarked; re-delivery is preferred over
// silent loss.
func (p *Pipeline) MarkDelivered(ctx context.Context, chatID int64, articles []model.ClassifiedArticle) {
	for _, art := range articles {
		if err := p.store.MarkSent(ctx, chatID, model.NormalizeURL(art.URL)); err != nil {
			p.log.Error("mark sent", "chat_id", chatID, "url", art.URL, "error", err)
		}
	}
}

func (p *Pipeline) deliverTo(ctx context.Context, chatID int64, articles []model.ClassifiedArticle) {
	items, err := p.builder.BuildForUser(ctx, chatID, articles)
	if err != nil {
		p.log.Error("build digest", "chat_id", chatID, "error", err)
		return
	}

	sent := 0
	for _, art := range items {
		if ctx.Err() != nil {
			return
		}
		// Deliver first, mark second: a failed send keeps the article
		// eligible for the next cycle.
		if err := p.sender.SendArticle(chatID, art); err != nil {
			p.log.Error("send article", "chat_id", chatID, "url", art.URL, "error", err)
			continue
		}
		sent++
		if err := p.store.MarkSent(ctx, chatID, model.NormalizeURL(art.URL)); err != nil {
			p.log.Error("mark sent", "chat_id", chatID, "url", art.URL, "error", err)
		}

		// Rate limit: ~20 messages/sec max for Telegram
		time.Sleep(50 * time.Millisecond)
	}

	if sent > 0 {
		p.log.Info("delivered digest", "chat_id", chatID, "count", sent)
	}
}
