package jinja

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteLadder is returned when a bucket lacks an icon or a color.
var ErrIncompleteLadder = errors.New("incomplete ladder")

// Bucket is one branch of a ladder. When is a template expression; the
// fallback bucket leaves it empty.
type Bucket struct {
	When  string
	Icon  string
	Color string
}

// Ladder is an if/elif/else chain rendered for the host template engine.
// Buckets are tested in order, Otherwise catches the rest.
type Ladder struct {
	Prelude   string
	Buckets   []Bucket
	Otherwise Bucket
}

func (l Ladder) Validate() error {
	for i, b := range l.Buckets {
		if b.When == "" || b.Icon == "" || b.Color == "" {
			return fmt.Errorf("%w: bucket %d", ErrIncompleteLadder, i)
		}
	}
	if l.Otherwise.Icon == "" || l.Otherwise.Color == "" {
		return fmt.Errorf("%w: fallback bucket", ErrIncompleteLadder)
	}
	return nil
}

func (l Ladder) IconTemplate() string {
	return l.render(func(b Bucket) string { return b.Icon })
}

func (l Ladder) ColorTemplate() string {
	return l.render(func(b Bucket) string { return b.Color })
}

func (l Ladder) render(pick func(Bucket) string) string {
	var sb strings.Builder
	sb.WriteString(l.Prelude)
	if len(l.Buckets) == 0 {
		sb.WriteString(pick(l.Otherwise))
		return sb.String()
	}
	for i, b := range l.Buckets {
		if i == 0 {
			sb.WriteString("{% if " + b.When + " %}")
		} else {
			sb.WriteString("{% elif " + b.When + " %}")
		}
		sb.WriteString(pick(b))
	}
	sb.WriteString("{% else %}" + pick(l.Otherwise) + "{% endif %}")
	return sb.String()
}

var batteryBuckets = []struct {
	below int
	icon  string
	color string
}{
	{10, "mdi:battery-alert", "red"},
	{20, "mdi:battery-10", "red"},
	{30, "mdi:battery-20", "orange"},
	{40, "mdi:battery-30", "orange"},
	{50, "mdi:battery-40", "yellow"},
	{60, "mdi:battery-50", "yellow"},
	{70, "mdi:battery-60", "green"},
	{80, "mdi:battery-70", "green"},
	{90, "mdi:battery-80", "green"},
	{100, "mdi:battery-90", "green"},
}

// BatteryLadder buckets a percentage sensor: <10, <20 ... <100, ==100, else.
func BatteryLadder(entityID string) (Ladder, error) {
	ref, err := StateRef(entityID)
	if err != nil {
		return Ladder{}, err
	}
	l := Ladder{
		Prelude:   "{% set level = " + ref + ".state | int(-1) %}",
		Otherwise: Bucket{Icon: "mdi:battery-unknown", Color: "disabled"},
	}
	l.Buckets = append(l.Buckets, Bucket{When: "level < 0", Icon: "mdi:battery-unknown", Color: "disabled"})
	for _, b := range batteryBuckets {
		l.Buckets = append(l.Buckets, Bucket{When: fmt.Sprintf("level < %d", b.below), Icon: b.icon, Color: b.color})
	}
	l.Buckets = append(l.Buckets, Bucket{When: "level == 100", Icon: "mdi:battery", Color: "green"})
	return l, nil
}

// OccupancySources names the entities feeding the occupancy ladder. Empty
// fields drop their bucket. AreaState is a Magic Areas area state sensor whose
// "states" attribute lists the active secondary states.
type OccupancySources struct {
	Motion      string
	Presence    string
	Occupancy   string
	MediaPlayer string
	AreaState   string
}

// OccupancyLadder orders the area signals by priority: motion, presence,
// occupancy, media playing, presence hold, sleep, extended, occupied, then clear.
func OccupancyLadder(src OccupancySources) (Ladder, error) {
	l := Ladder{Otherwise: Bucket{Icon: "mdi:home-outline", Color: "grey"}}

	onBucket := func(id, icon, color string) error {
		if id == "" {
			return nil
		}
		if !ValidEntityID(id) {
			return fmt.Errorf("%w: %q", ErrUnsafeEntityID, id)
		}
		l.Buckets = append(l.Buckets, Bucket{When: "is_state(" + Quote(id) + ", 'on')", Icon: icon, Color: color})
		return nil
	}
	if err := onBucket(src.Motion, "mdi:motion-sensor", "red"); err != nil {
		return Ladder{}, err
	}
	if err := onBucket(src.Presence, "mdi:account", "red"); err != nil {
		return Ladder{}, err
	}
	if err := onBucket(src.Occupancy, "mdi:home-account", "red"); err != nil {
		return Ladder{}, err
	}
	if src.MediaPlayer != "" {
		if !ValidEntityID(src.MediaPlayer) {
			return Ladder{}, fmt.Errorf("%w: %q", ErrUnsafeEntityID, src.MediaPlayer)
		}
		l.Buckets = append(l.Buckets, Bucket{
			When: "is_state(" + Quote(src.MediaPlayer) + ", 'playing')", Icon: "mdi:television-play", Color: "blue",
		})
	}
	if src.AreaState != "" {
		if !ValidEntityID(src.AreaState) {
			return Ladder{}, fmt.Errorf("%w: %q", ErrUnsafeEntityID, src.AreaState)
		}
		l.Prelude = "{% set area_states = state_attr(" + Quote(src.AreaState) + ", 'states') or [] %}"
		for _, s := range []Bucket{
			{When: "'presence_hold' in area_states", Icon: "mdi:car-brake-hold", Color: "orange"},
			{When: "'sleep' in area_states", Icon: "mdi:sleep", Color: "purple"},
			{When: "'extended' in area_states", Icon: "mdi:home-clock", Color: "orange"},
			{When: "'occupied' in area_states", Icon: "mdi:home-account", Color: "amber"},
		} {
			l.Buckets = append(l.Buckets, s)
		}
	}
	return l, nil
}
