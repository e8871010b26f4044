package view

import (
	"dashboard-strategy/internal/domain/card"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/query"

	"github.com/samber/lo"
)

// DomainView walks floors, then areas, then entities. Areas and floors
// without cards are dropped; a view-level controller heads the sections when
// there is at least one.
func (a *Assembler) DomainView(def card.Definition) (model.View, error) {
	tracker := a.track(def.ID)
	domain := query.ParseToken(def.Token).Domain
	opts := a.cards.DomainOptions(domain)

	v := model.View{
		ID:       def.ID,
		Title:    opts.Title,
		Path:     def.ID,
		Icon:     def.Icon,
		Badges:   []model.Config{},
		Sections: []model.Section{},
		Cards:    []model.Config{},
	}
	if vo := a.options.Views[def.ID]; vo.Title != "" {
		v.Title = vo.Title
	}
	if vo := a.options.Views[def.ID]; vo.Icon != "" {
		v.Icon = vo.Icon
	}
	tracker.advance(StageBadgesBuilt)

	var viewTarget model.Target
	if def.Groupable {
		for _, floor := range a.state.Floors() {
			section, target, ok := a.floorSection(floor, def, opts)
			if !ok {
				continue
			}
			v.Sections = append(v.Sections, section)
			viewTarget = viewTarget.Union(target)
		}
	} else {
		var cards []model.Config
		for _, area := range a.state.Areas() {
			if area.Hidden {
				continue
			}
			var entities []*model.StrategyEntity
			group, err := guard(func() ([]model.Config, error) {
				entities = a.query.AreaEntities(area, def.Token)
				return a.cards.EntityCards(entities, opts), nil
			})
			if err != nil {
				a.unitFailed("area", area.AreaID, err)
				continue
			}
			cards = append(cards, group...)
			viewTarget = viewTarget.Union(model.EntitiesTarget(ids(entities)))
		}
		if len(cards) > 0 {
			v.Sections = append(v.Sections, model.GridSection(cards...))
		}
	}
	tracker.advance(StageSectionsBuilt)

	if len(v.Sections) > 0 {
		controller := a.cards.Controller(viewTarget, card.Header{Title: v.Title}, domain)
		v.Sections = append([]model.Section{model.GridSection(controller)}, v.Sections...)
	}
	tracker.advance(StageDone)
	return v, nil
}

// floorSection builds the section of one floor, or reports false when no area on it has cards.
func (a *Assembler) floorSection(floor *model.StrategyFloor, def card.Definition, opts model.DomainOptions) (model.Section, model.Target, bool) {
	domain := query.ParseToken(def.Token).Domain
	var (
		cards       []model.Config
		areaTargets model.Target
	)
	for _, area := range a.state.FloorAreas(floor) {
		if area.Hidden {
			continue
		}
		var target model.Target
		group, err := guard(func() ([]model.Config, error) {
			var group []model.Config
			group, target = a.areaGroup(area, def, opts)
			return group, nil
		})
		if err != nil {
			a.unitFailed("area", area.AreaID, err)
			continue
		}
		if len(group) == 0 {
			continue
		}
		cards = append(cards, group...)
		areaTargets = areaTargets.Union(target)
	}
	if len(cards) == 0 {
		return model.Section{}, model.Target{}, false
	}

	target := areaTargets
	if !floor.IsUndisclosed() {
		target = model.FloorTarget(floor.FloorID)
	}
	controller := a.cards.Controller(target, card.Header{Title: floor.Name}, domain)
	return model.GridSection(append([]model.Config{controller}, cards...)...), target, true
}

// areaGroup returns the controller and entity cards of one area, or nil when
// no entity card remains.
func (a *Assembler) areaGroup(area *model.StrategyArea, def card.Definition, opts model.DomainOptions) ([]model.Config, model.Target) {
	entities := a.query.AreaEntities(area, def.Token)
	if len(entities) == 0 {
		return nil, model.Target{}
	}
	cards := a.cards.EntityCards(entities, opts)
	if len(cards) == 0 {
		return nil, model.Target{}
	}
	target := areaTarget(area, entities)
	controller := a.cards.Controller(target, card.Header{
		Title:  area.Name,
		Icon:   card.AreaIcon(area),
		Path:   area.Slug,
		Device: a.areaDevice(area),
	}, query.ParseToken(def.Token).Domain)
	return append([]model.Config{controller}, a.cards.Group(cards)...), target
}

// areaTarget addresses the area by id, except the Undisclosed Area which no
// service call can address: its entities are listed instead.
func areaTarget(area *model.StrategyArea, entities []*model.StrategyEntity) model.Target {
	if area.IsUndisclosed() {
		return model.EntitiesTarget(ids(entities))
	}
	return model.AreaTarget(area.AreaID)
}

func ids(entities []*model.StrategyEntity) []string {
	return lo.Map(entities, func(e *model.StrategyEntity, _ int) string { return e.EntityID })
}
