package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

var aggregatorLog = logger.With("aggregator")

// Aggregator fans a request out to every registered connector and merges the
// results in registration order.
//
// Parallel connectors run together and are awaited with settle-all semantics.
// Exclusive connectors run afterwards, one at a time, each behind its
// process-wide gate. A failed connector contributes nothing and never fails
// the aggregation.
type Aggregator struct {
	registry *ConnectorRegistry
	recorder *EventRecorder
}

// NewAggregator creates an aggregator.
func NewAggregator(registry *ConnectorRegistry, recorder *EventRecorder) *Aggregator {
	return &Aggregator{registry: registry, recorder: recorder}
}

// invocation is the outcome of one guarded connector call.
type invocation struct {
	items    []domain.ResultItem
	terminal bool
	err      error
}

// Run executes all connectors for the request.
// It returns an error only when the event trail is incomplete, which happens
// when a progress event could not be persisted.
func (a *Aggregator) Run(ctx context.Context, req domain.SearchRequest) ([]domain.ResultItem, error) {
	connectors := a.registry.Connectors()
	outcomes := make([]invocation, len(connectors))

	var wg sync.WaitGroup
	for i, c := range connectors {
		if c.Class() != domain.ClassParallel {
			continue
		}
		wg.Add(1)
		go func(i int, c driven.Connector) {
			defer wg.Done()
			outcomes[i] = a.invoke(ctx, c, req)
		}(i, c)
	}
	wg.Wait()

	for i, c := range connectors {
		if c.Class() == domain.ClassExclusive {
			outcomes[i] = a.invoke(ctx, c, req)
		}
	}

	groups := make([][]domain.ResultItem, len(outcomes))
	var errs []error
	terminal := 0
	for i, o := range outcomes {
		groups[i] = o.items
		if o.terminal {
			terminal++
		}
		if o.err != nil {
			errs = append(errs, o.err)
		}
	}

	if terminal != len(connectors) {
		return nil, fmt.Errorf("%w: %d of %d connectors recorded a terminal event: %w",
			domain.ErrEventLogIncomplete, terminal, len(connectors), errors.Join(errs...))
	}

	merged := domain.Concat(groups...)
	aggregatorLog.Debug("session %s: merged %d items from %d connectors", req.SessionID, len(merged), len(connectors))
	return merged, nil
}

// invoke is the guard around a single connector call. It records started and
// exactly one terminal event, and turns connector errors and panics into a
// failed event with no items.
func (a *Aggregator) invoke(ctx context.Context, c driven.Connector, req domain.SearchRequest) invocation {
	name := c.Name()

	if _, err := a.recorder.Record(ctx, req, name, domain.EventStarted, nil); err != nil {
		return invocation{err: err}
	}

	items, err := a.call(ctx, c, req)
	status := domain.EventCompleted
	if err != nil {
		aggregatorLog.Warn("session %s: %v", req.SessionID, err)
		status = domain.EventFailed
		items = nil
	}

	if _, recErr := a.recorder.Record(ctx, req, name, status, items); recErr != nil {
		return invocation{err: recErr}
	}
	return invocation{items: items, terminal: true}
}

// call runs the connector, acquiring its gate first when it is exclusive.
func (a *Aggregator) call(ctx context.Context, c driven.Connector, req domain.SearchRequest) (items []domain.ResultItem, err error) {
	name := c.Name()
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = &domain.ConnectorError{Source: name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if gate := a.registry.gate(name); gate != nil {
		select {
		case gate <- struct{}{}:
			defer func() { <-gate }()
		case <-ctx.Done():
			return nil, &domain.ConnectorError{Source: name, Err: ctx.Err()}
		}
	}

	items, err = c.Search(ctx, req)
	if err != nil {
		var ce *domain.ConnectorError
		if !errors.As(err, &ce) {
			err = &domain.ConnectorError{Source: name, Err: err}
		}
		return nil, err
	}
	if items == nil {
		items = []domain.ResultItem{}
	}
	return items, nil
}
