// Package aggregator fetches all configured feed sources concurrently and
// merges their entries into one deduplicated candidate list.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"newsbot/internal/fetcher"
	"newsbot/internal/model"
)

// Extra time the collector waits past the per-source timeout before
// abandoning sources that have not reported back.
const waitBuffer = 2 * time.Second

// Aggregator runs one fetch task per source and assembles the results.
type Aggregator struct {
	fetcher    *fetcher.Fetcher
	sources    []model.Source
	timeout    time.Duration
	maxPerFeed int
	log        *slog.Logger
}

// New creates an Aggregator over the given sources.
func New(f *fetcher.Fetcher, sources []model.Source, timeout time.Duration, maxPerFeed int, log *slog.Logger) *Aggregator {
	return &Aggregator{
		fetcher:    f,
		sources:    sources,
		timeout:    timeout,
		maxPerFeed: maxPerFeed,
		log:        log,
	}
}

// FetchAll fetches every source in parallel, each under its own timeout,
// and returns the deduplicated candidates in source-list order. A failing
// source contributes zero candidates; a source still running past
// timeout+buffer is abandoned and its result discarded. FetchAll never
// returns an error.
func (a *Aggregator) FetchAll(ctx context.Context) []model.Article {
	type result struct {
		index    int
		articles []model.Article
	}

	results := make(chan result, len(a.sources))
	for i, src := range a.sources {
		go func(i int, src model.Source) {
			fctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			feed, err := a.fetcher.Fetch(fctx, src.URL)
			if err != nil {
				a.log.Warn("fetch source", "source", src.Name, "url", src.URL, "error", err)
				results <- result{index: i}
				return
			}
			results <- result{index: i, articles: fetcher.Articles(feed, src.Name, a.maxPerFeed)}
		}(i, src)
	}

	perSource := make([][]model.Article, len(a.sources))
	deadline := time.NewTimer(a.timeout + waitBuffer)
	defer deadline.Stop()

	received := 0
collect:
	for received < len(a.sources) {
		select {
		case r := <-results:
			perSource[r.index] = r.articles
			received++
		case <-deadline.C:
			a.log.Warn("abandoning slow sources", "pending", len(a.sources)-received)
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	seen := make(map[string]struct{})
	var merged []model.Article
	for _, articles := range perSource {
		for _, art := range articles {
			key := model.NormalizeURL(art.URL)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, art)
		}
	}

	a.log.Info("aggregated candidates", "unique", len(merged), "sources", len(a.sources))
	return merged
}
