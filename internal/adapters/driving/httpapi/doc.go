// Package httpapi exposes the search service over HTTP and WebSocket.
//
// Routes:
//
//	GET|POST /search?query=&grade=   submit a search, returns the pending session
//	GET      /search/{id}            session snapshot including the result
//	GET      /search/{id}/events     progress events ordered by sequence
//	GET      /search/{id}/ws         snapshot followed by live notifications
//	GET      /healthz                admission queue stats
//
// Every route except /healthz requires a bearer token, sent either as
// "Authorization: Bearer <token>" or as the token query parameter.
package httpapi
