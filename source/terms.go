package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/c360studio/artgraph/thesaurus"
	"golang.org/x/net/html"
)

// DefaultTermURL is the term page template. {locale} and {id} are replaced.
const DefaultTermURL = "https://rkd.nl/{locale}/explore/thesaurus?term={id}"

// aatBrowserPrefix is stripped from AAT browser links to get the AAT id.
const aatBrowserPrefix = "http://browser.aat-ned.nl/"

// AATNamespace is the namespace of Getty AAT concepts.
const AATNamespace = "http://vocab.getty.edu/aat/"

// Labels of the term page sections in both page languages. The CSS classes
// of the sections do not reliably say which list they hold, so the heading
// text decides.
var (
	notFoundMarkers      = []string{"Term not found", "Term niet gevonden"}
	noDescriptionMarkers = []string{"No description available", "Geen beschrijving beschikbaar"}
	broaderMarkers       = []string{"Broader term", "Ruimere term"}
	usedForMarkers       = []string{"Used for", "Gebruikt voor"}
	narrowerMarkers      = []string{"Narrower term", "Nauwere term"}
	relatedMarkers       = []string{"Related term", "Verwante term"}
)

// TermScraper fetches thesaurus terms from their HTML pages.
type TermScraper struct {
	urlTemplate string
	http        *fetcher
	converter   *md.Converter
	logger      *slog.Logger
}

// NewTermScraper creates a scraper for pages at urlTemplate.
func NewTermScraper(urlTemplate string, cfg HTTPConfig, logger *slog.Logger) *TermScraper {
	if urlTemplate == "" {
		urlTemplate = DefaultTermURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TermScraper{
		urlTemplate: urlTemplate,
		http:        newFetcher(cfg, logger),
		converter:   md.NewConverter("", true, nil),
		logger:      logger,
	}
}

// TermURL returns the page URL of a term in a locale.
func (s *TermScraper) TermURL(locale, id string) string {
	return strings.NewReplacer(
		"{locale}", url.PathEscape(locale),
		"{id}", url.QueryEscape(id),
	).Replace(s.urlTemplate)
}

// FetchTerm implements thesaurus.TermFetcher.
func (s *TermScraper) FetchTerm(ctx context.Context, locale, id string) (*thesaurus.TermData, error) {
	pageURL := s.TermURL(locale, id)
	body, err := s.http.get(ctx, pageURL, "text/html,application/xhtml+xml")
	if err != nil {
		if isNotFoundStatus(err) {
			return nil, thesaurus.ErrTermNotFound
		}
		return nil, fmt.Errorf("fetch term %s (%s): %w", id, locale, err)
	}

	data, err := s.ParseTermPage(body)
	if err != nil {
		return nil, err
	}
	data.URL = pageURL
	return data, nil
}

// ParseTermPage extracts term data from a term page.
func (s *TermScraper) ParseTermPage(body []byte) (*thesaurus.TermData, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse term page: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	if containsAny(doc.Text(), notFoundMarkers) {
		return nil, thesaurus.ErrTermNotFound
	}
	term := doc.Find("div.term").First()
	if term.Length() == 0 {
		return nil, thesaurus.ErrTermNotFound
	}

	data := &thesaurus.TermData{
		Title:       collapseSpace(term.Find("div.title").First().Text()),
		Description: s.description(term.Find("div.description").First()),
	}

	doc.Find("div.broader-terms").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if containsAny(text, broaderMarkers) {
			data.Broader = append(data.Broader, termLinks(sel)...)
		}
		if containsAny(text, usedForMarkers) {
			data.UsedFor = append(data.UsedFor, termLinks(sel)...)
		}
	})
	doc.Find("div.narrower-terms").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if containsAny(text, narrowerMarkers) {
			data.Narrower = append(data.Narrower, termLinks(sel)...)
		}
		if containsAny(text, relatedMarkers) {
			data.Related = append(data.Related, termLinks(sel)...)
		}
	})

	doc.Find("div.external-list a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "aat-ned") {
			return true
		}
		id := strings.Trim(strings.TrimPrefix(href, aatBrowserPrefix), "/")
		if id != "" {
			data.ExternalMapping = AATNamespace + id
			return false
		}
		return true
	})

	if data.Title == "" {
		return nil, thesaurus.ErrTermNotFound
	}
	return data, nil
}

// description converts the description block to markdown text. The
// placeholder shown for terms without a description yields "".
func (s *TermScraper) description(sel *goquery.Selection) string {
	if sel.Length() == 0 || containsAny(sel.Text(), noDescriptionMarkers) {
		return ""
	}
	inner, err := sel.Html()
	if err != nil {
		return collapseSpace(sel.Text())
	}
	text, err := s.converter.ConvertString(inner)
	if err != nil {
		s.logger.Debug("Description conversion failed", "error", err)
		return collapseSpace(sel.Text())
	}
	return strings.TrimSpace(text)
}

// termLinks returns the term ids linked from sel.
func termLinks(sel *goquery.Selection) []string {
	var ids []string
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if id := TermIDFromHref(href); id != "" {
			ids = append(ids, id)
		}
	})
	return ids
}

// TermIDFromHref extracts the term id from a term page link.
func TermIDFromHref(href string) string {
	if u, err := url.Parse(href); err == nil {
		if id := u.Query().Get("term"); id != "" {
			return id
		}
	}
	if _, after, ok := strings.Cut(href, "term="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id
	}
	return ""
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
