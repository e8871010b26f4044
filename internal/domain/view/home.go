package view

import (
	"dashboard-strategy/internal/domain/card"
	"dashboard-strategy/internal/domain/chip"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/query"

	"go.uber.org/zap"
)

// HomeView assembles, in order: chips, persons, greeting, quick access cards,
// area cards two per row, then extra cards. home_view.hidden drops sections.
func (a *Assembler) HomeView() (model.View, error) {
	v := model.View{
		ID:       HomeID,
		Title:    "Home",
		Path:     HomeID,
		Icon:     "mdi:home-assistant",
		Badges:   []model.Config{},
		Sections: []model.Section{},
		Cards:    []model.Config{},
	}
	if vo := a.options.Views[HomeID]; vo.Title != "" {
		v.Title = vo.Title
	}
	hidden := a.options.HomeView.IsHidden

	if !hidden(model.HomeSectionChips) {
		if chips := a.homeChips(); len(chips) > 0 {
			v.Sections = append(v.Sections, model.GridSection(a.cards.ChipsCard(chips, model.Config{"alignment": "center"})))
		}
	}
	if !hidden(model.HomeSectionPersons) {
		if persons := a.persons(); len(persons) > 0 {
			v.Sections = append(v.Sections, model.GridSection(a.cards.HorizontalStack(persons...)))
		}
	}
	if !hidden(model.HomeSectionGreeting) {
		v.Sections = append(v.Sections, model.GridSection(a.cards.Greeting(nil)))
	}
	if !hidden(model.HomeSectionQuickAccess) && len(a.options.QuickAccessCards) > 0 {
		v.Sections = append(v.Sections, model.GridSection(clones(a.options.QuickAccessCards)...))
	}
	if !hidden(model.HomeSectionAreas) {
		if rows := a.areaRows(); len(rows) > 0 {
			v.Sections = append(v.Sections, model.GridSection(append([]model.Config{a.cards.Title("Areas", "")}, rows...)...))
		}
	}
	if !hidden(model.HomeSectionExtra) && len(a.options.ExtraCards) > 0 {
		v.Sections = append(v.Sections, model.GridSection(clones(a.options.ExtraCards)...))
	}
	return v, nil
}

func (a *Assembler) homeChips() []model.Config {
	chips := a.cards.Chips()
	var out []model.Config

	if id := a.weatherEntity(); id != "" {
		out = append(out, chips.Weather(id, nil))
	}
	for _, id := range a.alarmEntities() {
		out = append(out, chips.Alarm(id, nil))
	}

	exposed := make(map[string]bool)
	var domains []string
	for _, def := range a.Definitions() {
		d := query.ParseToken(def.Token).Domain
		exposed[d] = true
		domains = append(domains, d)
	}
	for _, d := range chip.CountDomains {
		if exposed[d] {
			out = append(out, chips.Count(d, nil, nil))
		}
	}
	out = append(out, chips.Unavailable(domains, nil))
	return model.Compact(out...)
}

// weatherEntity prefers the side option, then the first weather entity.
func (a *Assembler) weatherEntity() string {
	if id := a.options.Side.WeatherEntityID; id != "" {
		if err := a.query.CheckKnown(id); err != nil {
			a.logger.Warn("ignoring weather entity", zap.Error(err))
			return ""
		}
		return id
	}
	if ids := a.query.EntityIDs(query.Filter{Domain: "weather"}); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func (a *Assembler) alarmEntities() []string {
	if len(a.options.Side.AlarmEntityIDs) == 0 {
		ids := a.query.EntityIDs(query.Filter{Domain: "alarm_control_panel"})
		if len(ids) > 1 {
			ids = ids[:1]
		}
		return ids
	}
	var out []string
	for _, id := range a.options.Side.AlarmEntityIDs {
		if err := a.query.CheckKnown(id); err != nil {
			a.logger.Warn("ignoring alarm entity", zap.Error(err))
			continue
		}
		out = append(out, id)
	}
	return out
}

func (a *Assembler) persons() []model.Config {
	var out []model.Config
	for _, id := range a.query.EntityIDs(query.Filter{Domain: "person"}) {
		e, _ := a.state.Entity(id)
		if c, ok := a.cards.EntityCard(e, a.cards.DomainOptions("person")); ok {
			out = append(out, c)
		}
	}
	return out
}

// areaRows pairs the area cards into horizontal stacks.
func (a *Assembler) areaRows() []model.Config {
	var cards []model.Config
	for _, area := range a.Areas() {
		cards = append(cards, a.areaCard(area))
	}
	var rows []model.Config
	for i := 0; i < len(cards); i += 2 {
		end := i + 2
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, a.cards.HorizontalStack(cards[i:end]...))
	}
	return rows
}

// areaCard uses the area's card kind (areas.<id>.type, else areas._.type).
// A kind that fails to build falls back to the default card.
func (a *Assembler) areaCard(area *model.StrategyArea) model.Config {
	kind := a.options.Area(area.AreaID).Type
	c, err := a.cards.Area(kind, area)
	if err == nil {
		return c
	}
	if a.options.Debug {
		a.logger.Debug("area card kind failed, using default",
			zap.String("area", area.AreaID), zap.String("kind", kind), zap.Error(err))
	}
	c, _ = a.cards.Area(card.AreaKindDefault, area)
	return c
}

func clones(cs []model.Config) []model.Config {
	out := make([]model.Config, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Clone())
	}
	return out
}
