package tui

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// ErrMissingUser is returned when no user identity is provided.
var ErrMissingUser = errors.New("tui: user id is required")

// ErrMissingSession is returned when no session id is given to watch.
var ErrMissingSession = errors.New("tui: session id is required")
