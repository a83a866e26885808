// Package web provides shared HTTP and HTML plumbing for scraping connectors:
// a rate-limited client, status error mapping, and small node-matching
// helpers over golang.org/x/net/html.
package web
