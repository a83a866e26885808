package notify

import (
	"context"
	"errors"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

var _ driven.Notifier = Fanout(nil)

// Fanout publishes each notification to every notifier in order.
// All notifiers are attempted; their errors are joined.
type Fanout []driven.Notifier

// Publish sends n to each notifier.
func (f Fanout) Publish(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, notifier := range f {
		if notifier == nil {
			continue
		}
		if err := notifier.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
