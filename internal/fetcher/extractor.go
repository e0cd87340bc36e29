package fetcher

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/rs/zerolog"
)

const (
	titleMaxRunes = 60
	priceMaxRunes = 40
)

// integerPattern matches the first integer in a text, allowing "," "." or
// spaces as thousands separators ("1,234 items").
var integerPattern = regexp.MustCompile(`\d{1,3}(?:[,.\s]\d{3})+|\d+`)

// Product is one distinct product card found on the page.
type Product struct {
	Title string
	Price string
	Href  string
}

// Signature renders the stable identifier stored in an items signal.
func (p Product) Signature() string {
	return p.Title + " | " + p.Price + " | " + p.Href
}

// Extractor reads a Signal out of rendered HTML.
type Extractor struct {
	mode   string
	items  config.ItemExtractionConfig
	rules  []config.MetricRuleConfig
	logger zerolog.Logger
}

// NewExtractor creates an extractor for the given signal mode.
func NewExtractor(mode string, cfg config.FetcherConfig, logger zerolog.Logger) *Extractor {
	items := cfg.Items
	defaults := config.NewDefaultItemExtractionConfig()
	if len(items.CardSelectors) == 0 {
		items.CardSelectors = defaults.CardSelectors
	}
	if items.SampleSize <= 0 {
		items.SampleSize = defaults.SampleSize
	}
	if items.MinItems <= 0 {
		items.MinItems = defaults.MinItems
	}
	if items.MaxItems <= 0 || items.MaxItems > models.MaxSignalEntries {
		items.MaxItems = defaults.MaxItems
	}

	return &Extractor{
		mode:   mode,
		items:  items,
		rules:  cfg.Metrics,
		logger: logger.With().Str("component", "Extractor").Logger(),
	}
}

// Extract parses html and builds the signal observed at observedAt.
func (e *Extractor) Extract(html string, pageURL string, observedAt time.Time) (models.Signal, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Signal{}, common.NewFetchError(pageURL, common.FetchStageExtract, common.WrapError(err, "failed to parse HTML content"))
	}

	if e.mode == config.SignalModeCounts {
		metrics, err := e.ExtractMetrics(doc)
		if err != nil {
			return models.Signal{}, common.NewFetchError(pageURL, common.FetchStageExtract, err)
		}
		signal, err := models.NewCountSignal(observedAt, metrics)
		if err != nil {
			return models.Signal{}, common.NewFetchError(pageURL, common.FetchStageBuild, err)
		}
		return signal, nil
	}

	base, _ := url.Parse(pageURL)
	products := e.ExtractProducts(doc, base)
	if len(products) == 0 {
		return models.Signal{}, common.NewFetchError(pageURL, common.FetchStageExtract,
			common.NewError("no product cards matched selectors %v", e.items.CardSelectors))
	}

	signatures := make([]string, 0, min(len(products), e.items.MaxItems))
	for i, p := range products {
		if i >= e.items.MaxItems {
			break
		}
		signatures = append(signatures, p.Signature())
	}

	signal, err := models.NewItemSignal(observedAt, len(products), signatures)
	if err != nil {
		return models.Signal{}, common.NewFetchError(pageURL, common.FetchStageBuild, err)
	}
	return signal, nil
}

// ExtractProducts walks the card selectors in order and collects distinct
// products, stopping after the first selector that brings the total to
// MinItems.
func (e *Extractor) ExtractProducts(doc *goquery.Document, base *url.URL) []Product {
	products := make([]Product, 0, e.items.MinItems)
	seen := make(map[[2]string]struct{})

	for _, selector := range e.items.CardSelectors {
		matches := doc.Find(selector)
		if matches.Length() == 0 {
			continue
		}

		matches.Slice(0, min(matches.Length(), e.items.SampleSize)).Each(func(_ int, s *goquery.Selection) {
			href := strings.TrimSpace(s.AttrOr("href", ""))
			if href == "" || strings.Contains(strings.ToLower(href), "javascript:") {
				return
			}
			href = resolveHref(base, href)

			title := strings.TrimSpace(s.AttrOr("title", ""))
			text := collapseWhitespace(s.Text())

			key := [2]string{title, href}
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}

			if title == "" {
				title = truncateRunes(text, titleMaxRunes)
			}
			products = append(products, Product{
				Title: title,
				Price: truncateRunes(text, priceMaxRunes),
				Href:  href,
			})
		})

		if len(products) >= e.items.MinItems {
			break
		}
	}

	e.logger.Debug().Int("products", len(products)).Msg("Products extracted")
	return products
}

// ExtractMetrics applies each metric rule in configuration order.
func (e *Extractor) ExtractMetrics(doc *goquery.Document) (models.Metrics, error) {
	metrics := make(models.Metrics, 0, len(e.rules))
	for _, rule := range e.rules {
		matches := doc.Find(rule.Selector)

		if rule.Source != config.MetricSourceText {
			metrics = append(metrics, models.Metric{Name: rule.Name, Value: matches.Length()})
			continue
		}

		if matches.Length() == 0 {
			return nil, common.NewError("metric '%s': no element matches selector %q", rule.Name, rule.Selector)
		}
		value, err := parseFirstInteger(matches.First().Text())
		if err != nil {
			return nil, common.WrapErrorf(err, "metric '%s'", rule.Name)
		}
		metrics = append(metrics, models.Metric{Name: rule.Name, Value: value})
	}
	return metrics, nil
}

func parseFirstInteger(text string) (int, error) {
	match := integerPattern.FindString(text)
	if match == "" {
		return 0, common.NewError("no number in text %q", strings.TrimSpace(text))
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, match)
	return strconv.Atoi(digits)
}

func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil || ref.IsAbs() {
		return href
	}
	return base.ResolveReference(ref).String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
