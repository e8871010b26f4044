package view

import (
	"dashboard-strategy/internal/domain/card"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/query"
	"dashboard-strategy/internal/domain/registry"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

var (
	// ErrViewNotFound is returned for view ids that are neither home, an exposed domain nor an area.
	ErrViewNotFound = errors.New("view not found")
	// ErrBuildPanic wraps a panic recovered while building one unit of a view.
	ErrBuildPanic = errors.New("card builder panicked")
)

const HomeID = "home"

// Stage tracks the progress of one domain view.
type Stage int

const (
	StageNotStarted Stage = iota
	StageBadgesBuilt
	StageSectionsBuilt
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StageBadgesBuilt:
		return "badges_built"
	case StageSectionsBuilt:
		return "sections_built"
	case StageDone:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Assembler turns one registry state into views.
type Assembler struct {
	cards   *card.Factory
	state   *registry.State
	query   *query.Engine
	options *model.StrategyOptions
	logger  *zap.Logger
}

// NewAssembler fails with registry.ErrNotInitialized until the registry holds a state.
func NewAssembler(p registry.Provider, logger *zap.Logger) (*Assembler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cards, err := card.NewFactory(p, logger)
	if err != nil {
		return nil, err
	}
	return &Assembler{
		cards:   cards,
		state:   cards.State(),
		query:   cards.Query(),
		options: cards.State().Options,
		logger:  logger.Named("view"),
	}, nil
}

// Definitions returns the exposed domain views: views.<id>.order first,
// then built-in order. Hidden views, hidden domains and excluded domains are left out.
func (a *Assembler) Definitions() []card.Definition {
	excluded := make(map[string]bool, len(a.options.Side.ExcludedDomains))
	for _, d := range a.options.Side.ExcludedDomains {
		excluded[d] = true
	}
	var out []card.Definition
	for _, def := range card.Definitions() {
		domain := query.ParseToken(def.Token).Domain
		if a.options.Views[def.ID].Hidden || excluded[domain] {
			continue
		}
		if model.BoolValue(a.cards.DomainOptions(domain).Hidden, false) {
			continue
		}
		out = append(out, def)
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := a.order(out[i]), a.order(out[j])
		switch {
		case oi == nil:
			return false
		case oj == nil:
			return true
		}
		return *oi < *oj
	})
	return out
}

func (a *Assembler) order(def card.Definition) *int {
	if o := a.options.Views[def.ID].Order; o != nil {
		return o
	}
	return a.options.Domains[query.ParseToken(def.Token).Domain].Order
}

// Definition returns the exposed definition with id.
func (a *Assembler) Definition(id string) (card.Definition, bool) {
	for _, def := range a.Definitions() {
		if def.ID == id {
			return def, true
		}
	}
	return card.Definition{}, false
}

// View dispatches id to the home view, a domain view or an area subview.
func (a *Assembler) View(id string) (model.View, error) {
	if id == HomeID {
		return a.HomeView()
	}
	if def, ok := a.Definition(id); ok {
		return a.DomainView(def)
	}
	if area, ok := a.state.AreaBySlug(id); ok && !area.Hidden {
		return a.AreaView(area)
	}
	return model.View{}, fmt.Errorf("%w: %s", ErrViewNotFound, id)
}

// Areas returns the areas that get a subview: not hidden, and for the
// Undisclosed Area only when it holds entities.
func (a *Assembler) Areas() []*model.StrategyArea {
	var out []*model.StrategyArea
	for _, area := range a.state.Areas() {
		if area.Hidden {
			continue
		}
		if area.IsUndisclosed() && len(area.Entities) == 0 {
			continue
		}
		out = append(out, area)
	}
	return out
}

// unitFailed logs a skipped unit: the full error in debug mode, a summary otherwise.
func (a *Assembler) unitFailed(unit, id string, err error) {
	if a.options.Debug {
		a.logger.Error("building "+unit+" failed", zap.String(unit, id), zap.Error(err))
		return
	}
	a.logger.Warn("skipping "+unit+" that failed to build", zap.String(unit, id))
}

// guard runs build and turns a panic into an error.
func guard(build func() ([]model.Config, error)) (cards []model.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBuildPanic, r)
		}
	}()
	return build()
}

type stageTracker struct {
	logger *zap.Logger
	stage  Stage
}

func (a *Assembler) track(viewID string) *stageTracker {
	return &stageTracker{logger: a.logger.With(zap.String("view", viewID))}
}

func (t *stageTracker) advance(next Stage) {
	t.logger.Debug("view stage", zap.Stringer("from", t.stage), zap.Stringer("to", next))
	t.stage = next
}

func (a *Assembler) areaDevice(area *model.StrategyArea) *model.MagicAreaDevice {
	if d := a.state.MagicArea(area.Slug); d != nil {
		return d
	}
	return &model.MagicAreaDevice{AreaID: area.AreaID, Slug: area.Slug, Entities: map[string]*model.StrategyEntity{}}
}
