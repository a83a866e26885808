package domain

// ConcurrencyClass declares how a connector may be scheduled relative to others.
type ConcurrencyClass string

// Concurrency classes.
const (
	// ClassParallel connectors run concurrently with each other.
	ClassParallel ConcurrencyClass = "parallel"

	// ClassExclusive connectors run one at a time, never alongside another
	// connector of the same session, and at most one invocation per connector
	// is in flight process-wide.
	ClassExclusive ConcurrencyClass = "exclusive-sequential"
)

// IsValid returns true if the class is recognised.
func (c ConcurrencyClass) IsValid() bool {
	return c == ClassParallel || c == ClassExclusive
}

// SearchRequest is the input handed to every connector invocation.
type SearchRequest struct {
	SessionID string
	UserID    string
	Query     string
	Grade     GradeFilter
}

// ConnectorInfo describes a registered connector.
type ConnectorInfo struct {
	Name  string           `json:"name"`
	Class ConcurrencyClass `json:"class"`
}
