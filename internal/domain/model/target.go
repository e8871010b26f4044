package model

import "github.com/samber/lo"

// Target is a service-call target. Empty lists are omitted from the rendered config.
type Target struct {
	AreaIDs   []string
	FloorIDs  []string
	EntityIDs []string
}

func AreaTarget(areaID string) Target   { return Target{AreaIDs: []string{areaID}} }
func FloorTarget(floorID string) Target { return Target{FloorIDs: []string{floorID}} }
func EntitiesTarget(ids []string) Target {
	return Target{EntityIDs: append([]string(nil), ids...)}
}

// SingleEntity returns the entity id when the target is exactly one entity.
func (t Target) SingleEntity() (string, bool) {
	if len(t.EntityIDs) == 1 && len(t.AreaIDs) == 0 && len(t.FloorIDs) == 0 {
		return t.EntityIDs[0], true
	}
	return "", false
}

func (t Target) IsEmpty() bool {
	return len(t.AreaIDs) == 0 && len(t.FloorIDs) == 0 && len(t.EntityIDs) == 0
}

// Union merges two targets, keeping first-seen order.
func (t Target) Union(o Target) Target {
	return Target{
		AreaIDs:   lo.Uniq(append(append([]string(nil), t.AreaIDs...), o.AreaIDs...)),
		FloorIDs:  lo.Uniq(append(append([]string(nil), t.FloorIDs...), o.FloorIDs...)),
		EntityIDs: lo.Uniq(append(append([]string(nil), t.EntityIDs...), o.EntityIDs...)),
	}
}

func (t Target) Config() Config {
	c := Config{}
	if len(t.AreaIDs) > 0 {
		c["area_id"] = append([]string(nil), t.AreaIDs...)
	}
	if len(t.FloorIDs) > 0 {
		c["floor_id"] = append([]string(nil), t.FloorIDs...)
	}
	if len(t.EntityIDs) > 0 {
		c["entity_id"] = append([]string(nil), t.EntityIDs...)
	}
	return c
}
