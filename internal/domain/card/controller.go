package card

import (
	"dashboard-strategy/internal/domain/model"
)

// Header is what a controller card shows on its left side.
type Header struct {
	Title    string
	Subtitle string
	Icon     string
	Path     string
	// Device is handed to the domain's extra controls; nil outside area scope.
	Device *model.MagicAreaDevice
}

// Controller builds the stack heading a group of cards: a title card, then a
// chips card when the domain shows controls or has extra controls. A single
// entity target gets a toggle; any other target a turn-off chip.
func (f *Factory) Controller(target model.Target, header Header, domain string) model.Config {
	opts := f.DomainOptions(domain)

	cards := []interface{}{f.controllerTitle(header, opts.ControllerCardOptions)}

	showControls := model.BoolValue(opts.ShowControls, false)
	if !showControls && opts.ExtraControls == nil {
		return model.Config{"type": TypeHorizontal, "cards": cards}
	}

	var chips []model.Config
	if showControls {
		if id, ok := target.SingleEntity(); ok {
			chips = append(chips, f.chips.Toggle(id, opts.IconOn, opts.IconOff, nil))
		} else {
			chips = append(chips, f.chips.TurnOff(opts.OffService, target, opts.IconOff, nil))
		}
	}
	if opts.ExtraControls != nil {
		chips = append(chips, opts.ExtraControls(header.Device)...)
	}
	if compacted := model.Compact(chips...); len(compacted) > 0 {
		cards = append(cards, f.ChipsCard(compacted, nil))
	}
	return model.Config{"type": TypeHorizontal, "cards": cards}
}

func (f *Factory) controllerTitle(header Header, overrides model.Config) model.Config {
	var builtin model.Config
	if header.Icon != "" {
		builtin = model.Config{
			"type":      TypeTemplate,
			"primary":   header.Title,
			"icon":      header.Icon,
			"secondary": header.Subtitle,
		}
		if header.Path != "" {
			builtin["tap_action"] = model.Config{"action": "navigate", "navigation_path": header.Path}
		}
	} else {
		builtin = model.Config{"type": TypeTitle, "title": header.Title}
		if header.Subtitle != "" {
			builtin["subtitle"] = header.Subtitle
		}
		if header.Path != "" {
			builtin["title_tap_action"] = model.Config{"action": "navigate", "navigation_path": header.Path}
		}
	}
	return model.Compose(builtin, overrides)
}
