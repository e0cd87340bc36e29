package fetcher

import (
	"context"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/rs/zerolog"
)

// PageFetcher renders a page and extracts its signal.
type PageFetcher struct {
	renderer  Renderer
	extractor *Extractor
	now       func() time.Time
	logger    zerolog.Logger
}

// NewPageFetcher wires a renderer and an extractor into a Fetcher.
func NewPageFetcher(renderer Renderer, extractor *Extractor, logger zerolog.Logger) *PageFetcher {
	return &PageFetcher{
		renderer:  renderer,
		extractor: extractor,
		now:       time.Now,
		logger:    logger.With().Str("component", "PageFetcher").Logger(),
	}
}

// Fetch implements Fetcher.
func (pf *PageFetcher) Fetch(ctx context.Context, url string) (models.Signal, error) {
	start := time.Now()

	html, err := pf.renderer.Render(ctx, url)
	if err != nil {
		return models.Signal{}, common.NewFetchError(url, common.FetchStageRender, err)
	}

	signal, err := pf.extractor.Extract(html, url, pf.now())
	if err != nil {
		return models.Signal{}, err
	}

	pf.logger.Debug().
		Str("url", url).
		Int("html_bytes", len(html)).
		Str("signal", signal.Summary()).
		Dur("duration", time.Since(start)).
		Msg("Page fetched")
	return signal, nil
}
