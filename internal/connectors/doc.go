// Package connectors provides the built-in content sources and the factory
// that assembles them. Each sub-package knows how to search one site:
//
//   - ck12: CK12 community content, extracted from HTML by an LLM
//   - khanacademy: Khan Academy search page
//   - googlepdf: filetype:pdf web search via SerpAPI or Google Custom Search
//
// Shared HTTP, rate limiting, and HTML helpers live in the web package.
// Connectors are created by the Factory at startup and registered with the
// ConnectorRegistry in the order the Factory returns them.
package connectors
