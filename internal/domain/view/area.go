package view

import (
	"dashboard-strategy/internal/domain/card"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/query"
	"dashboard-strategy/internal/domain/resolver"
)

var badgeCapabilities = []resolver.Capability{
	resolver.AreaState,
	resolver.Presence,
	resolver.AggregateTemperature,
	resolver.AggregateHumidity,
}

var overviewCapabilities = []resolver.Capability{
	resolver.AggregateTemperature,
	resolver.AggregateHumidity,
	resolver.AggregateIlluminance,
	resolver.AggregateBattery,
}

// AreaView is the subview of one area: capability badges, aggregates, one
// section per exposed domain, then every remaining entity so none is dropped.
func (a *Assembler) AreaView(area *model.StrategyArea) (model.View, error) {
	v := model.View{
		ID:       area.Slug,
		Title:    area.Name,
		Path:     area.Slug,
		Icon:     card.AreaIcon(area),
		Subview:  true,
		Badges:   a.badges(area),
		Sections: []model.Section{},
		Cards:    []model.Config{},
	}

	if overview := a.overview(area); len(overview) > 0 {
		v.Sections = append(v.Sections, model.GridSection(overview...))
	}

	var exposed []string
	for _, def := range a.Definitions() {
		domain := query.ParseToken(def.Token).Domain
		exposed = append(exposed, domain)

		cards, err := guard(func() ([]model.Config, error) {
			return a.areaDomainCards(area, def), nil
		})
		if err != nil {
			a.unitFailed("area", area.AreaID+"/"+def.ID, err)
			continue
		}
		if len(cards) > 0 {
			v.Sections = append(v.Sections, model.GridSection(cards...))
		}
	}

	if misc := a.miscCards(area, exposed); len(misc) > 0 {
		v.Sections = append(v.Sections, model.GridSection(append([]model.Config{a.cards.Title("Miscellaneous", "")}, misc...)...))
	}
	if extra := a.options.Area(area.AreaID).ExtraCards; len(extra) > 0 {
		v.Sections = append(v.Sections, model.GridSection(clones(extra)...))
	}
	return v, nil
}

func (a *Assembler) badges(area *model.StrategyArea) []model.Config {
	chain := a.cards.Chips().Resolver()
	badges := make([]model.Config, 0, len(badgeCapabilities))
	for _, c := range badgeCapabilities {
		badges = append(badges, model.Config{"type": "entity", "entity": chain.EntityID(area.Slug, c)})
	}
	return model.Compact(badges...)
}

func (a *Assembler) overview(area *model.StrategyArea) []model.Config {
	out := make([]model.Config, 0, len(overviewCapabilities))
	for _, c := range overviewCapabilities {
		out = append(out, a.cards.Aggregate(area, c))
	}
	return model.Compact(out...)
}

func (a *Assembler) areaDomainCards(area *model.StrategyArea, def card.Definition) []model.Config {
	domain := query.ParseToken(def.Token).Domain
	opts := a.cards.DomainOptions(domain)
	entities := a.query.AreaEntities(area, def.Token)
	cards := a.cards.EntityCards(entities, opts)
	if len(cards) == 0 {
		return nil
	}
	controller := a.cards.Controller(areaTarget(area, entities), card.Header{
		Title:  opts.Title,
		Device: a.areaDevice(area),
	}, domain)
	return append([]model.Config{controller}, a.cards.Group(cards)...)
}

// miscCards covers the entities of area outside every exposed domain.
func (a *Assembler) miscCards(area *model.StrategyArea, exposed []string) []model.Config {
	var out []model.Config
	for _, e := range a.query.EntitiesWithoutDomains(area, exposed) {
		out = append(out, a.cards.EntityCards([]*model.StrategyEntity{e}, a.cards.DomainOptions(e.Domain()))...)
	}
	return out
}
