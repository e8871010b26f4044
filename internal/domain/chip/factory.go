package chip

import (
	"dashboard-strategy/internal/domain/query"
	"dashboard-strategy/internal/domain/registry"
	"dashboard-strategy/internal/domain/resolver"
	"fmt"
)

// Factory builds mushroom chips over one registry state. Every builder
// returns nil, or an object with an empty "entity", when it has nothing to
// show; model.Compact removes those.
type Factory struct {
	state    *registry.State
	query    *query.Engine
	resolver *resolver.Chain
}

// NewFactory fails with registry.ErrNotInitialized until the registry holds a state.
func NewFactory(p registry.Provider) (*Factory, error) {
	st, err := p.State()
	if err != nil {
		return nil, fmt.Errorf("chip factory: %w", err)
	}
	return &Factory{
		state:    st,
		query:    query.New(st),
		resolver: resolver.Default(st),
	}, nil
}

func (f *Factory) Query() *query.Engine {
	return f.query
}

func (f *Factory) Resolver() *resolver.Chain {
	return f.resolver
}
