// Package fetcher turns a watched page into a models.Signal: a Renderer
// produces the fully rendered HTML and an Extractor reads the signal out of it.
package fetcher

import (
	"context"

	"github.com/aleister1102/stockwatch/internal/models"
)

// Fetcher captures the current signal of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (models.Signal, error)
}

// Renderer returns the HTML of a page after client-side rendering.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}
