package connectors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lessonscout/internal/connectors/ck12"
	"github.com/custodia-labs/lessonscout/internal/connectors/googlepdf"
	"github.com/custodia-labs/lessonscout/internal/connectors/khanacademy"
	"github.com/custodia-labs/lessonscout/internal/connectors/web"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

type registration struct {
	name  string
	build driven.ConnectorBuilder
}

// Factory creates connectors from registered builders.
type Factory struct {
	builders []registration
}

// NewFactory creates a factory with the built-in connectors registered.
func NewFactory() *Factory {
	f := &Factory{}
	f.Register(ck12.Name, buildCK12)
	f.Register(khanacademy.Name, buildKhanAcademy)
	f.Register(googlepdf.Name, buildGooglePDF)
	return f
}

// Register adds a builder. A later registration with the same name replaces
// the earlier one in place.
func (f *Factory) Register(name string, build driven.ConnectorBuilder) {
	for i := range f.builders {
		if f.builders[i].name == name {
			f.builders[i].build = build
			return
		}
	}
	f.builders = append(f.builders, registration{name: name, build: build})
}

// Names returns the registered connector names in order.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.builders))
	for _, b := range f.builders {
		names = append(names, b.name)
	}
	return names
}

// Build creates every enabled connector. An empty Enabled list enables all.
func (f *Factory) Build(ctx context.Context, deps driven.ConnectorDeps) ([]driven.Connector, []string, error) {
	enabled, err := f.enabledSet(deps.Settings.Enabled)
	if err != nil {
		return nil, nil, err
	}

	var (
		out      []driven.Connector
		warnings []string
	)
	for _, b := range f.builders {
		if enabled != nil && !enabled[b.name] {
			continue
		}
		c, err := b.build(ctx, deps)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("connector %s disabled: %v", b.name, err))
			continue
		}
		out = append(out, c)
	}
	return out, warnings, nil
}

func (f *Factory) enabledSet(names []string) (map[string]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	known := make(map[string]bool, len(f.builders))
	for _, b := range f.builders {
		known[b.name] = true
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if !known[n] {
			return nil, fmt.Errorf("%w: connector %q", domain.ErrUnsupportedType, n)
		}
		set[n] = true
	}
	return set, nil
}

func buildCK12(_ context.Context, deps driven.ConnectorDeps) (driven.Connector, error) {
	if deps.LLM == nil {
		return nil, ck12.ErrNoLLM
	}
	opts := []ck12.Option{}
	if t := deps.Settings.RequestTimeout; t > 0 {
		opts = append(opts, ck12.WithClient(web.NewClient(
			web.WithTimeout(t),
			web.WithRateLimiter(web.NewRateLimiter(ck12.RateLimit)),
		)))
	}
	c := ck12.New(deps.LLM, opts...)
	if deps.Prompts != nil {
		c.SetPromptStore(deps.Prompts)
	}
	return c, nil
}

func buildKhanAcademy(_ context.Context, deps driven.ConnectorDeps) (driven.Connector, error) {
	if t := deps.Settings.RequestTimeout; t > 0 {
		return khanacademy.New(khanacademy.WithClient(web.NewClient(web.WithTimeout(t)))), nil
	}
	return khanacademy.New(), nil
}

func buildGooglePDF(ctx context.Context, deps driven.ConnectorDeps) (driven.Connector, error) {
	return googlepdf.NewFromSettings(ctx, deps.Settings)
}
