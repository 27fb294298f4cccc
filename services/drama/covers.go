package drama

import (
	"context"
	"log"

	"github.com/sourcegraph/conc/pool"

	"dramastream/models"
	"dramastream/utils"
)

// RepairCovers backfills missing or junk cover URLs on listing cards by
// looking each title up through the detail endpoint. At most CoverRepairMax
// cards are repaired per call, fetched with the same bound on concurrency, so
// a listing page that is mostly coverless cannot fan out N detail calls
// against the upstream.
//
// This is deliberately best-effort: a fetch failure for one card is swallowed
// (and logged), because a missing cover is acceptable UI degradation while a
// failed listing is not. It is the only layer that absorbs upstream failures
// instead of surfacing them.
func (s *Service) RepairCovers(ctx context.Context, cards []models.CatalogCard) []models.CatalogCard {
	var broken []int
	for i := range cards {
		if utils.IsLikelyImageURL(cards[i].CoverURL) {
			continue
		}
		// Covers resolved by an earlier repair are reused without a fetch.
		if v, ok := s.covers.Get(cards[i].ID); ok {
			if cover, ok := v.(string); ok && cover != "" {
				cards[i].CoverURL = cover
			}
			continue
		}
		if len(broken) < s.opts.CoverRepairMax {
			broken = append(broken, i)
		}
	}
	if len(broken) == 0 {
		return cards
	}

	p := pool.New().WithMaxGoroutines(s.opts.CoverRepairMax)
	for _, idx := range broken {
		i := idx
		p.Go(func() {
			cover := s.resolveCover(ctx, cards[i].ID)
			if cover == "" {
				return
			}
			cards[i].CoverURL = cover
		})
	}
	p.Wait()

	return cards
}

// resolveCover fetches the detail record for id and returns its cover when
// usable, caching the result either way so repeat listings don't re-fetch a
// title that genuinely has no cover.
func (s *Service) resolveCover(ctx context.Context, id string) string {
	detail, err := s.Detail(ctx, id)
	if err != nil {
		log.Printf("[drama] cover repair for %s failed: %v", id, err)
		return ""
	}
	cover := detail.CoverURL
	if !utils.IsLikelyImageURL(cover) {
		cover = ""
	}
	s.covers.Set(id, cover, s.opts.CoverTTL)
	return cover
}
