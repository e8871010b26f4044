package query

import (
	"dashboard-strategy/internal/domain/jinja"
	"dashboard-strategy/internal/domain/model"
	"dashboard-strategy/internal/domain/registry"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/samber/lo"
)

// ErrUnknownEntity is returned when a template would reference an entity the registry does not know.
var ErrUnknownEntity = errors.New("unknown entity")

// Filter selects entities. Domain is required; an empty AreaSlugs matches every area.
type Filter struct {
	Domain      string
	DeviceClass string
	AreaSlugs   []string
}

// ParseToken splits "domain" or "domain:device_class".
func ParseToken(token string) Filter {
	domain, class, _ := strings.Cut(token, ":")
	return Filter{Domain: domain, DeviceClass: class}
}

// Engine answers entity queries over one registry state.
type Engine struct {
	state *registry.State

	excludedEntities map[string]struct{}
	excludedDomains  map[string]struct{}
	excludedClasses  map[string]struct{}
	excludedPlatform map[string]struct{}
}

func New(state *registry.State) *Engine {
	side := state.Options.Side
	return &Engine{
		state:            state,
		excludedEntities: set(side.ExcludedEntities),
		excludedDomains:  set(side.ExcludedDomains),
		excludedClasses:  set(side.ExcludedDeviceClasses),
		excludedPlatform: set(side.ExcludedIntegrations),
	}
}

func set(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func (q *Engine) State() *registry.State {
	return q.state
}

// Eligible reports whether e may appear in any result: not hidden, not
// disabled and not excluded by the side options.
func (q *Engine) Eligible(e *model.StrategyEntity) bool {
	if !e.Visible() {
		return false
	}
	if _, ok := q.excludedEntities[e.EntityID]; ok {
		return false
	}
	if _, ok := q.excludedDomains[e.Domain()]; ok {
		return false
	}
	if _, ok := q.excludedPlatform[e.Platform]; ok && e.Platform != "" {
		return false
	}
	if len(q.excludedClasses) > 0 {
		if _, ok := q.excludedClasses[q.state.DeviceClass(e.EntityID)]; ok {
			return false
		}
	}
	return true
}

func (q *Engine) matches(e *model.StrategyEntity, f Filter, areaIDs map[string]struct{}) bool {
	if e.Domain() != f.Domain || !q.Eligible(e) {
		return false
	}
	if f.DeviceClass != "" && q.state.DeviceClass(e.EntityID) != f.DeviceClass {
		return false
	}
	if areaIDs != nil {
		if _, ok := areaIDs[q.state.AreaID(e)]; !ok {
			return false
		}
	}
	return true
}

// EntityIDs returns the ids matching f in registry order.
func (q *Engine) EntityIDs(f Filter) []string {
	var areaIDs map[string]struct{}
	if len(f.AreaSlugs) > 0 {
		areaIDs = make(map[string]struct{}, len(f.AreaSlugs))
		for _, slug := range f.AreaSlugs {
			if a, ok := q.state.AreaBySlug(slug); ok {
				areaIDs[a.AreaID] = struct{}{}
			}
		}
	}
	out := []string{}
	for _, e := range q.state.EntitiesByDomain(f.Domain) {
		if q.matches(e, f, areaIDs) {
			out = append(out, e.EntityID)
		}
	}
	return out
}

// AreaEntities returns the entities of area matching token ("domain" or
// "domain:device_class"), sorted by display name.
func (q *Engine) AreaEntities(area *model.StrategyArea, token string) []*model.StrategyEntity {
	f := ParseToken(token)
	areaIDs := map[string]struct{}{area.AreaID: {}}
	out := lo.Filter(q.state.EntitiesByDomain(f.Domain), func(e *model.StrategyEntity, _ int) bool {
		return q.matches(e, f, areaIDs)
	})
	q.sortByName(out)
	return out
}

// EntitiesWithoutDomains returns the eligible entities of area whose domain is
// not in domains, sorted by display name.
func (q *Engine) EntitiesWithoutDomains(area *model.StrategyArea, domains []string) []*model.StrategyEntity {
	skip := set(domains)
	var out []*model.StrategyEntity
	for _, id := range area.Entities {
		e, ok := q.state.Entity(id)
		if !ok || !q.Eligible(e) {
			continue
		}
		if _, ok := skip[e.Domain()]; ok {
			continue
		}
		out = append(out, e)
	}
	q.sortByName(out)
	return out
}

// sortByName orders case-insensitively by display name; nameless entities go
// last and ties fall back to the entity id.
func (q *Engine) sortByName(entities []*model.StrategyEntity) {
	names := make(map[string]string, len(entities))
	for _, e := range entities {
		names[e.EntityID] = strings.ToLower(q.state.DisplayName(e))
	}
	sort.SliceStable(entities, func(i, j int) bool {
		ni, nj := names[entities[i].EntityID], names[entities[j].EntityID]
		switch {
		case ni == "" && nj != "":
			return false
		case ni != "" && nj == "":
			return true
		case ni != nj:
			return ni < nj
		}
		return entities[i].EntityID < entities[j].EntityID
	})
}

// CheckKnown fails with ErrUnknownEntity for any id missing from the registry.
func (q *Engine) CheckKnown(ids ...string) error {
	for _, id := range ids {
		if _, ok := q.state.Entity(id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEntity, id)
		}
	}
	return nil
}

// CountTemplate builds the host template counting entities matching f whose
// state compares to value with op. The text is passed through, never evaluated here.
func (q *Engine) CountTemplate(f Filter, op, value string) (string, error) {
	ids := q.EntityIDs(f)
	if err := q.CheckKnown(ids...); err != nil {
		return "", err
	}
	return jinja.CountTemplate(ids, op, value)
}

var operatorSymbols = map[string]string{
	"eq": "==",
	"ne": "!=",
	"gt": ">",
	"lt": "<",
	"ge": ">=",
	"le": "<=",
}

// CountMatching evaluates the CountTemplate predicate against the snapshot's
// live states. Entities without a live state never match.
func (q *Engine) CountMatching(f Filter, op, value string) (int, error) {
	symbol, ok := operatorSymbols[op]
	if !ok {
		return 0, fmt.Errorf("%w: %q", jinja.ErrInvalidOperator, op)
	}
	expr, err := govaluate.NewEvaluableExpression("state " + symbol + " value")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, id := range q.EntityIDs(f) {
		st, ok := q.state.EntityState(id)
		if !ok {
			continue
		}
		res, err := expr.Evaluate(operands(st.State, value))
		if err != nil {
			continue
		}
		if matched, _ := res.(bool); matched {
			count++
		}
	}
	return count, nil
}

// operands compares numerically when both sides parse as numbers.
func operands(state, value string) map[string]interface{} {
	sf, errS := strconv.ParseFloat(state, 64)
	vf, errV := strconv.ParseFloat(value, 64)
	if errS == nil && errV == nil {
		return map[string]interface{}{"state": sf, "value": vf}
	}
	return map[string]interface{}{"state": state, "value": value}
}
