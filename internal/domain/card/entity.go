package card

import (
	"dashboard-strategy/internal/domain/model"
)

const (
	TypeEntity      = "custom:mushroom-entity-card"
	TypeTemplate    = "custom:mushroom-template-card"
	TypeTitle       = "custom:mushroom-title-card"
	TypeChips       = "custom:mushroom-chips-card"
	TypeSwipe       = "custom:swipe-card"
	TypeStackIn     = "custom:stack-in-card"
	TypeHorizontal  = "horizontal-stack"
	TypeNativeArea  = "area"
	TypePictureLive = "picture-entity"
)

// entityBuilder returns the built-in card for one entity.
type entityBuilder func(entityID string) model.Config

func entityCard(cardType string, extra model.Config) entityBuilder {
	return func(entityID string) model.Config {
		c := model.Merge(extra)
		c["type"] = cardType
		c["entity"] = entityID
		return c
	}
}

// entityBuilders is the static domain -> card registry. Domains missing here use miscBuilder.
var entityBuilders = map[string]entityBuilder{
	"light": entityCard("custom:mushroom-light-card", model.Config{
		"show_brightness_control": true,
		"show_color_control":      true,
		"use_light_color":         true,
		"collapsible_controls":    true,
	}),
	"fan": entityCard("custom:mushroom-fan-card", model.Config{
		"show_percentage_control": true,
		"show_oscillate_control":  true,
		"icon_animation":          true,
		"collapsible_controls":    true,
	}),
	"cover": entityCard("custom:mushroom-cover-card", model.Config{
		"show_buttons_control":  true,
		"show_position_control": true,
		"collapsible_controls":  true,
	}),
	"switch": entityCard(TypeEntity, model.Config{
		"tap_action": model.Config{"action": "toggle"},
	}),
	"climate": entityCard("custom:mushroom-climate-card", model.Config{
		"hvac_modes":               []interface{}{"off", "cool", "heat", "fan_only"},
		"show_temperature_control": true,
		"collapsible_controls":     true,
	}),
	"camera": entityCard(TypePictureLive, model.Config{
		"camera_view": "live",
		"show_name":   false,
		"show_state":  false,
	}),
	"media_player": entityCard("custom:mushroom-media-player-card", model.Config{
		"use_media_info":       true,
		"media_controls":       []interface{}{"on_off", "play_pause_stop"},
		"show_volume_control":  true,
		"volume_controls":      []interface{}{"volume_mute", "volume_set", "volume_buttons"},
		"collapsible_controls": true,
	}),
	"vacuum": entityCard("custom:mushroom-vacuum-card", model.Config{
		"commands": []interface{}{"start_pause", "stop", "return_home"},
	}),
	"lock": entityCard("custom:mushroom-lock-card", nil),
	"sensor": entityCard(TypeEntity, model.Config{
		"secondary_info": "state",
	}),
	"binary_sensor": entityCard(TypeEntity, model.Config{
		"secondary_info": "last-changed",
	}),
	"person": entityCard("custom:mushroom-person-card", model.Config{
		"layout":         "vertical",
		"primary_info":   "none",
		"secondary_info": "none",
		"icon_type":      "entity-picture",
	}),
	"alarm_control_panel": entityCard("custom:mushroom-alarm-control-panel-card", model.Config{
		"states": []interface{}{"armed_home", "armed_away", "armed_night"},
	}),
	"scene": func(entityID string) model.Config {
		return model.Config{
			"type":   TypeEntity,
			"entity": entityID,
			"tap_action": model.Config{
				"action":         "perform-action",
				"perform_action": "scene.turn_on",
				"target":         model.EntitiesTarget([]string{entityID}).Config(),
			},
		}
	},
	"input_select": entityCard("custom:mushroom-select-card", nil),
	"select":       entityCard("custom:mushroom-select-card", nil),
	"number":       entityCard("custom:mushroom-number-card", model.Config{"display_mode": "slider"}),
	"input_number": entityCard("custom:mushroom-number-card", model.Config{"display_mode": "slider"}),
}

var miscBuilder = entityCard(TypeEntity, model.Config{
	"secondary_info": "last-changed",
})

// Builtin returns the built-in card for entityID.
func Builtin(entityID string) model.Config {
	if b, ok := entityBuilders[model.Domain(entityID)]; ok {
		return b(entityID)
	}
	return miscBuilder(entityID)
}
