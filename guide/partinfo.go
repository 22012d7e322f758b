// Package guide orchestrates a full run: walk the buyers-guide table,
// open each part's detail surface, and stream the merged rows to CSV.
package guide

import (
	"context"
	"log/slog"

	"github.com/use-agent/buyersguide/cache"
	"github.com/use-agent/buyersguide/engine"
	"github.com/use-agent/buyersguide/extract"
	"github.com/use-agent/buyersguide/models"
	"github.com/use-agent/buyersguide/retry"
)

// descriptionPattern matches the description label on a detail page.
const descriptionPattern = `description`

// PartExtractor turns a part link into a fully populated PartRecord by
// visiting its detail surface.
type PartExtractor struct {
	Engine engine.Engine

	// Cache, when non-nil, short-circuits detail navigation for part
	// URLs seen within the TTL.
	Cache *cache.Store

	// Retry bounds detail-surface attempts per part.
	Retry retry.Policy
}

// PartInfo extracts the detail record for one part link. It never
// returns an error: every failure degrades to a partial record, so a
// bad part cannot sink its row.
//
// Degradation ladder: nil link → empty record; unresolvable href →
// text only; detail navigation exhausted → text and URL only.
func (x *PartExtractor) PartInfo(ctx context.Context, link *models.PartLink, baseURL, kind string) models.PartRecord {
	if link == nil {
		return models.PartRecord{}
	}

	detailURL, err := engine.ResolveURL(baseURL, link.Href)
	if err != nil {
		slog.Debug("part link not navigable", "part", link.Text, "error", err)
		return models.PartRecord{Part: link.Text}
	}

	if x.Cache != nil {
		if rec, ok, err := x.Cache.Get(detailURL, kind); err != nil {
			slog.Warn("cache read failed", "url", detailURL, "error", err)
		} else if ok {
			slog.Debug("cache hit", "url", detailURL, "kind", kind)
			return rec
		}
	}

	rec, err := retry.Do(ctx, "part detail "+kind+" "+link.Text, x.Retry, func(ctx context.Context) (models.PartRecord, error) {
		return x.fetchDetail(ctx, detailURL, link.Text)
	})
	if err != nil {
		slog.Warn("part detail failed after retries",
			"part", link.Text, "url", detailURL, "error", err)
		return models.PartRecord{Part: link.Text, URL: detailURL}
	}

	if x.Cache != nil {
		if err := x.Cache.Put(detailURL, kind, rec); err != nil {
			slog.Warn("cache write failed", "url", detailURL, "error", err)
		}
	}
	return rec
}

func (x *PartExtractor) fetchDetail(ctx context.Context, detailURL, partText string) (models.PartRecord, error) {
	surface, release, err := x.Engine.OpenDetail(ctx, detailURL)
	if err != nil {
		return models.PartRecord{}, err
	}
	defer release()

	return models.PartRecord{
		Part:        partText,
		URL:         detailURL,
		Description: extract.LabeledValue(surface, descriptionPattern),
		Specs:       extract.Specifications(surface).Render(),
	}, nil
}
