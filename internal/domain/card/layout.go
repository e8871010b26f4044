package card

import (
	"dashboard-strategy/internal/domain/model"
)

// carouselThreshold is the entity card count above which cards are swiped.
const carouselThreshold = 2

func cardList(cards []model.Config) []interface{} {
	out := make([]interface{}, 0, len(cards))
	for _, c := range cards {
		out = append(out, c)
	}
	return out
}

func (f *Factory) ChipsCard(chips []model.Config, options model.Config) model.Config {
	return model.Compose(model.Config{
		"type":      TypeChips,
		"alignment": "end",
		"chips":     cardList(model.Compact(chips...)),
	}, options)
}

// Swipe wraps cards in a horizontal carousel.
func (f *Factory) Swipe(cards []model.Config, options model.Config) model.Config {
	return model.Compose(model.Config{
		"type": TypeSwipe,
		"parameters": model.Config{
			"slidesPerView": 1,
			"spaceBetween":  16,
			"pagination":    model.Config{"type": "bullets"},
		},
		"cards": cardList(cards),
	}, options)
}

// Group returns entity cards as they should sit in a section: swiped when
// there are more than two, as is otherwise.
func (f *Factory) Group(cards []model.Config) []model.Config {
	if len(cards) > carouselThreshold {
		return []model.Config{f.Swipe(cards, nil)}
	}
	return cards
}

func (f *Factory) Title(title, subtitle string) model.Config {
	c := model.Config{"type": TypeTitle, "title": title}
	if subtitle != "" {
		c["subtitle"] = subtitle
	}
	return c
}

func (f *Factory) HorizontalStack(cards ...model.Config) model.Config {
	return model.Config{"type": TypeHorizontal, "cards": cardList(cards)}
}

const greetingTemplate = "{% set hour = now().hour %}" +
	"{% if hour >= 18 %}Good evening{% elif hour >= 12 %}Good afternoon{% elif hour >= 5 %}Good morning{% else %}Hello{% endif %}" +
	", {{ user }}!"

// Greeting picks its text from the hour at render time.
func (f *Factory) Greeting(options model.Config) model.Config {
	return model.Compose(model.Config{
		"type":       TypeTemplate,
		"primary":    greetingTemplate,
		"icon":       "mdi:hand-wave",
		"icon_color": "orange",
		"tap_action": model.Config{"action": "none"},
	}, options)
}
