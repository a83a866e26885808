// Package khanacademy searches khanacademy.org by parsing its search page.
package khanacademy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/lessonscout/internal/connectors/web"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

// Name is the source identifier recorded on events.
const Name = "khanacademy"

// DefaultBaseURL is the public Khan Academy site.
const DefaultBaseURL = "https://www.khanacademy.org"

// Class names used by the search results markup.
const (
	classTitle       = "_2dibcm7"
	classDescription = "_1n941cdr"
	classType        = "_1ufuji7"
)

// ErrNoResultsContainer is returned when the page has no search results list.
var ErrNoResultsContainer = errors.New("khanacademy: search results container not found")

var log = logger.With(Name)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches lessons from the Khan Academy search page.
// The grade filter is not supported by the site and is ignored.
type Connector struct {
	client  *web.Client
	baseURL string
}

// Option configures a Connector.
type Option func(*Connector)

// WithBaseURL points the connector at another host.
func WithBaseURL(u string) Option {
	return func(c *Connector) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithClient replaces the HTTP client.
func WithClient(client *web.Client) Option {
	return func(c *Connector) { c.client = client }
}

// New creates a Khan Academy connector.
func New(opts ...Option) *Connector {
	c := &Connector{
		client:  web.NewClient(),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return Name
}

// Class returns ClassParallel.
func (c *Connector) Class() domain.ConcurrencyClass {
	return domain.ClassParallel
}

// Search fetches and parses the search results page.
func (c *Connector) Search(ctx context.Context, req domain.SearchRequest) ([]domain.ResultItem, error) {
	body, err := c.client.Get(ctx, c.searchURL(req.Query))
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}

	doc, err := web.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	items, err := c.parse(doc)
	if err != nil {
		return nil, err
	}
	log.Debug("session %s: %d results for %q", req.SessionID, len(items), req.Query)
	return items, nil
}

func (c *Connector) searchURL(query string) string {
	params := url.Values{}
	params.Set("page_search_query", query)
	params.Set("search_again", "1")
	return c.baseURL + "/search?" + params.Encode()
}

// parse reads every list item, nested ones included, inside a list under the
// indexed results container.
func (c *Connector) parse(doc *html.Node) ([]domain.ResultItem, error) {
	container := web.Find(doc, web.ByID("indexed-search-results"))
	if container == nil {
		return nil, ErrNoResultsContainer
	}

	items := []domain.ResultItem{}
	isList := web.ByTag("ul")
	for _, li := range web.Descendants(container, web.ByTag("li")) {
		if !web.HasAncestor(li, container, isList) {
			continue
		}
		if item, ok := c.parseItem(li); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *Connector) parseItem(li *html.Node) (domain.ResultItem, bool) {
	anchor := web.Find(li, web.ByTag("a"))
	href := strings.TrimSpace(web.Attr(anchor, "href"))

	title := web.Text(web.Find(li, web.ByClass(classTitle)))
	if title == "" {
		title = web.Text(anchor)
	}
	if title == "" && href == "" {
		return domain.ResultItem{}, false
	}

	item := domain.ResultItem{
		Title:       title,
		Description: web.Text(web.Find(li, web.ByClass(classDescription))),
		Image:       web.Attr(web.Find(li, web.ByTag("img")), "src"),
		Type:        domain.ParseResultType(web.Text(web.Find(li, web.ByClass(classType)))),
	}
	if href != "" {
		item.Link = web.Resolve(c.baseURL, href)
	}
	return item, true
}
