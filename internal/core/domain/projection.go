package domain

import "sort"

// Projection is a subscriber-side view of one session assembled from
// notifications. Apply is idempotent and order-insensitive: duplicate events
// are ignored by id, and per source the event with the highest
// (terminal-ness, seq) wins, so any delivery order converges to the same state.
type Projection struct {
	sessionID string
	session   *SearchSession
	sources   map[string]SourceEvent
	seen      map[string]struct{}
}

// NewProjection creates an empty projection for a session.
func NewProjection(sessionID string) *Projection {
	return &Projection{
		sessionID: sessionID,
		sources:   make(map[string]SourceEvent),
		seen:      make(map[string]struct{}),
	}
}

// Apply merges a notification. It returns true when the projection changed.
func (p *Projection) Apply(n Notification) bool {
	if n.SessionID != p.sessionID {
		return false
	}
	switch n.Kind {
	case NotifyEvent:
		if n.Event == nil {
			return false
		}
		return p.applyEvent(*n.Event)
	case NotifySession:
		if n.Session == nil {
			return false
		}
		return p.applySession(*n.Session)
	default:
		return false
	}
}

// ApplyAll merges a batch, returning true if anything changed.
func (p *Projection) ApplyAll(ns []Notification) bool {
	changed := false
	for _, n := range ns {
		if p.Apply(n) {
			changed = true
		}
	}
	return changed
}

func (p *Projection) applyEvent(e SourceEvent) bool {
	if e.SessionID != p.sessionID {
		return false
	}
	if e.ID != "" {
		if _, dup := p.seen[e.ID]; dup {
			return false
		}
		p.seen[e.ID] = struct{}{}
	}
	cur, ok := p.sources[e.Source]
	if ok && !eventSupersedes(e, cur) {
		return false
	}
	p.sources[e.Source] = e
	return true
}

func eventSupersedes(next, cur SourceEvent) bool {
	nr, cr := eventRank(next.Status), eventRank(cur.Status)
	if nr != cr {
		return nr > cr
	}
	return next.Seq > cur.Seq
}

func eventRank(s EventStatus) int {
	if s.IsTerminal() {
		return 2
	}
	return 1
}

func (p *Projection) applySession(s SearchSession) bool {
	if p.session != nil {
		cur := p.session
		if s.Status.Rank() < cur.Status.Rank() {
			return false
		}
		if s.Status.Rank() == cur.Status.Rank() && !s.UpdatedAt.After(cur.UpdatedAt) {
			return false
		}
	}
	p.session = &s
	return true
}

// Session returns the latest session snapshot, or nil if none was seen.
func (p *Projection) Session() *SearchSession {
	if p.session == nil {
		return nil
	}
	s := *p.session
	return &s
}

// Source returns the winning event for a source.
func (p *Projection) Source(name string) (SourceEvent, bool) {
	e, ok := p.sources[name]
	return e, ok
}

// Sources returns the winning event per source, sorted by source name.
func (p *Projection) Sources() []SourceEvent {
	out := make([]SourceEvent, 0, len(p.sources))
	for _, e := range p.sources {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Done reports whether the session reached a terminal state.
func (p *Projection) Done() bool {
	return p.session != nil && p.session.Status.IsTerminal()
}
