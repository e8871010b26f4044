package card

import (
	"dashboard-strategy/internal/domain/chip"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/query"
	"dashboard-strategy/internal/domain/registry"
	"dashboard-strategy/internal/domain/resolver"
	"fmt"

	"go.uber.org/zap"
)

const (
	categoryConfig     = "config"
	categoryDiagnostic = "diagnostic"
)

// Factory builds cards over one registry state.
type Factory struct {
	state    *registry.State
	options  *model.StrategyOptions
	query    *query.Engine
	resolver *resolver.Chain
	chips    *chip.Factory
	logger   *zap.Logger
}

// NewFactory fails with registry.ErrNotInitialized until the registry holds a state.
func NewFactory(p registry.Provider, logger *zap.Logger) (*Factory, error) {
	st, err := p.State()
	if err != nil {
		return nil, fmt.Errorf("card factory: %w", err)
	}
	chips, err := chip.NewFactory(st)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		state:    st,
		options:  st.Options,
		query:    chips.Query(),
		resolver: chips.Resolver(),
		chips:    chips,
		logger:   logger.Named("card"),
	}, nil
}

func (f *Factory) Chips() *chip.Factory { return f.chips }

func (f *Factory) Query() *query.Engine { return f.query }

func (f *Factory) State() *registry.State { return f.state }

// DomainOptions returns the effective options of domain: built-in, then the
// user "_" entry, then the user domain entry.
func (f *Factory) DomainOptions(domain string) model.DomainOptions {
	opts := f.options.Domain(domain, builtinOptions(domain))
	if opts.ExtraControls == nil {
		opts.ExtraControls = f.extraControls(domain)
	}
	return opts
}

// EntityCard layers the built-in card, the domain card defaults and the
// device then entity card_options. The second result is false when
// card_options hide the entity.
func (f *Factory) EntityCard(e *model.StrategyEntity, opts model.DomainOptions) (model.Config, bool) {
	overrides, hidden := f.options.CardOverrides(e.EntityID, e.DeviceID)
	if hidden {
		return nil, false
	}
	return model.Compose(Builtin(e.EntityID), opts.CardDefaults, overrides), true
}

// EntityCards builds one card per entity, skipping entities hidden through
// card_options and config or diagnostic entities when the domain hides them.
func (f *Factory) EntityCards(entities []*model.StrategyEntity, opts model.DomainOptions) []model.Config {
	hideConfig := model.BoolValue(opts.HideConfigEntities, true)
	hideDiagnostic := model.BoolValue(opts.HideDiagnosticEntities, true)

	out := make([]model.Config, 0, len(entities))
	for _, e := range entities {
		if hideConfig && e.EntityCategory == categoryConfig {
			continue
		}
		if hideDiagnostic && e.EntityCategory == categoryDiagnostic {
			continue
		}
		if c, ok := f.EntityCard(e, opts); ok {
			out = append(out, c)
		}
	}
	return out
}

func (f *Factory) extraControls(domain string) model.ExtraControlsFunc {
	switch domain {
	case "light":
		return func(d *model.MagicAreaDevice) []model.Config {
			if d == nil {
				return nil
			}
			return []model.Config{f.chips.LightControl(d.Slug, nil)}
		}
	case "climate":
		return func(d *model.MagicAreaDevice) []model.Config {
			if d == nil {
				return nil
			}
			return []model.Config{f.chips.Aggregate(d.Slug, resolver.AggregateTemperature, nil)}
		}
	}
	return nil
}
