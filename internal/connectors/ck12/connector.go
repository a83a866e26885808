// Package ck12 searches ck12.org. The result list HTML is handed to an LLM
// and the items it returns are decoded.
package ck12

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/lessonscout/internal/connectors/web"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

// Name is the source identifier recorded on events.
const Name = "ck12"

// DefaultBaseURL is the public CK12 site.
const DefaultBaseURL = "https://www.ck12.org"

const (
	// MaxHTMLChars bounds the HTML sent to the model.
	MaxHTMLChars = 15000

	// MaxItems is the most results kept from one extraction.
	MaxItems = 5

	// Temperature is the sampling temperature for extraction.
	Temperature = 0.3

	containerClassPrefix = "ContentList__ListContainer"
)

// RateLimit keeps CK12 page fetches to one per second.
var RateLimit = web.RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1}

// ErrNoLLM is returned when the connector is used without a model.
var ErrNoLLM = errors.New("ck12: extraction requires an LLM")

// defaultExtractPrompt is the fallback prompt when no PromptStore is configured.
const defaultExtractPrompt = `The following is a raw HTML snippet from a search results page for "%s" %s on CK12.org. ` +
	`Your task is to extract and return a JSON array of at most 5 relevant search results with the following fields: ` +
	`title, description, link, image, type (one of "Video", "Game", "Interactive Lesson", "Worksheet", or "Lesson"). ` +
	`Only return the array. Do not include any explanations or markdown.

HTML content:
%s`

var log = logger.With(Name)

var (
	_ driven.Connector        = (*Connector)(nil)
	_ driven.PromptStoreAware = (*Connector)(nil)
)

// Connector fetches CK12 community content and extracts items with an LLM.
// It runs in the exclusive class.
type Connector struct {
	client      *web.Client
	llm         driven.LLMService
	promptStore driven.PromptStore
	baseURL     string
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

// New creates a CK12 connector that extracts results with llm.
func New(llm driven.LLMService, opts ...Option) *Connector {
	c := &Connector{
		client:  web.NewClient(web.WithRateLimiter(web.NewRateLimiter(RateLimit))),
		llm:     llm,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *Connector) SetPromptStore(store driven.PromptStore) {
	c.promptStore = store
}

// Name returns the source identifier.
func (c *Connector) Name() string {
	return Name
}

// Class returns ClassExclusive.
func (c *Connector) Class() domain.ConcurrencyClass {
	return domain.ClassExclusive
}

// Search fetches the search page, isolates the result lists, and asks the
// model to turn them into items.
func (c *Connector) Search(ctx context.Context, req domain.SearchRequest) ([]domain.ResultItem, error) {
	if c.llm == nil {
		return nil, ErrNoLLM
	}

	body, err := c.client.Get(ctx, c.searchURL(req.Query, req.Grade))
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}

	snippet, err := extractContainers(body)
	if err != nil {
		return nil, err
	}
	snippet = truncate(snippet, MaxHTMLChars)

	prompt := fmt.Sprintf(c.loadPrompt(), req.Query, req.Grade.Phrase(), snippet)
	reply, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: Temperature})
	if err != nil {
		return nil, fmt.Errorf("extract with %s: %w", c.llm.ModelName(), err)
	}

	decoded := domain.DecodeResults(reply)
	if !decoded.OK() {
		return nil, fmt.Errorf("decode extraction: %w", decoded.Err)
	}

	items := decoded.Items
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	for i := range items {
		if items[i].Link != "" {
			items[i].Link = web.Resolve(c.baseURL, items[i].Link)
		}
	}
	log.Debug("session %s: extracted %d results from %d chars", req.SessionID, len(items), len(snippet))
	return items, nil
}

func (c *Connector) searchURL(query string, grade domain.GradeFilter) string {
	params := url.Values{}
	params.Set("referrer", "search")
	params.Set("pageNum", "1")
	params.Set("tabId", "communityContributedContentTab")
	if !grade.IsAll() {
		params.Set("gradeFilters", strconv.Itoa(int(grade)))
	}
	params.Set("q", query)
	return c.baseURL + "/search/?" + params.Encode()
}

// loadPrompt loads the prompt from the store, falling back to the default if unavailable.
func (c *Connector) loadPrompt() string {
	if c.promptStore == nil {
		return defaultExtractPrompt
	}
	prompt, err := c.promptStore.Load(driven.PromptExtract)
	if err != nil {
		return defaultExtractPrompt
	}
	return prompt
}

// extractContainers returns the outer HTML of every result list container.
// Pages without one fall back to the body so the model still sees the content.
func extractContainers(body []byte) (string, error) {
	doc, err := web.ParseHTML(body)
	if err != nil {
		return "", err
	}

	nodes := web.FindAll(doc, web.ByClassPrefix(containerClassPrefix))
	if len(nodes) == 0 {
		if b := web.Find(doc, web.ByTag("body")); b != nil {
			nodes = []*html.Node{b}
		} else {
			nodes = []*html.Node{doc}
		}
	}
	return web.Render(nodes...)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
