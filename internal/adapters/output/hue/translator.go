package hue

import (
	"fmt"

	"github.com/Knetic/govaluate"
	"github.com/amimof/huego"
)

// Reading is one Hue resource expressed as a smart home entity.
type Reading struct {
	Domain     string
	State      string
	Attributes map[string]interface{}
}

type LightTranslator interface {
	FromLight(l huego.Light) Reading
}

type SensorTranslator interface {
	FromSensor(s huego.Sensor) Reading
}

type LightStrategy struct{}

func (s *LightStrategy) FromLight(l huego.Light) Reading {
	r := Reading{Domain: "light", State: "off", Attributes: map[string]interface{}{}}
	if l.State == nil {
		r.State = "unavailable"
		return r
	}
	if l.State.On {
		r.State = "on"
		r.Attributes["brightness"] = float64(l.State.Bri)
	}
	if l.State.ColorMode != "" {
		r.Attributes["color_mode"] = l.State.ColorMode
	}
	if !l.State.Reachable {
		r.State = "unavailable"
	}
	return r
}

// PlugStrategy exposes smart plugs as outlets.
type PlugStrategy struct{}

func (s *PlugStrategy) FromLight(l huego.Light) Reading {
	r := (&LightStrategy{}).FromLight(l)
	r.Domain = "switch"
	delete(r.Attributes, "brightness")
	r.Attributes["device_class"] = "outlet"
	return r
}

type PresenceStrategy struct{}

func (s *PresenceStrategy) FromSensor(sensor huego.Sensor) Reading {
	r := Reading{
		Domain:     "binary_sensor",
		State:      "off",
		Attributes: map[string]interface{}{"device_class": "motion"},
	}
	if on, _ := sensor.State["presence"].(bool); on {
		r.State = "on"
	}
	return r
}

// ScaledStrategy reads a numeric state key and converts it with a formula of x.
type ScaledStrategy struct {
	Key         string
	Formula     string
	DeviceClass string
	Unit        string
}

func (s *ScaledStrategy) FromSensor(sensor huego.Sensor) Reading {
	r := Reading{
		Domain: "sensor",
		State:  "unknown",
		Attributes: map[string]interface{}{
			"device_class":        s.DeviceClass,
			"unit_of_measurement": s.Unit,
			"state_class":         "measurement",
		},
	}
	if x, ok := sensor.State[s.Key].(float64); ok {
		r.State = fmt.Sprintf("%.1f", evaluate(s.Formula, x))
	}
	return r
}

// evaluate handles formulas like "x / 100" or "10 ** ((x - 1) / 10000)"
func evaluate(formula string, x float64) float64 {
	expression, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return x
	}
	result, err := expression.Evaluate(map[string]interface{}{"x": x})
	if err != nil {
		return x
	}
	if val, ok := result.(float64); ok {
		return val
	}
	return x
}

type Factory struct {
	lights  map[string]LightTranslator
	sensors map[string]SensorTranslator
}

func NewFactory() *Factory {
	return &Factory{
		lights: map[string]LightTranslator{
			"Extended color light":    &LightStrategy{},
			"Color temperature light": &LightStrategy{},
			"Dimmable light":          &LightStrategy{},
			"On/Off plug-in unit":     &PlugStrategy{},
		},
		sensors: map[string]SensorTranslator{
			"ZLLPresence":    &PresenceStrategy{},
			"ZLLTemperature": &ScaledStrategy{
				Key: "temperature", Formula: "x / 100", DeviceClass: "temperature", Unit: "°C",
			},
			"ZLLLightLevel": &ScaledStrategy{
				Key: "lightlevel", Formula: "10 ** ((x - 1) / 10000)", DeviceClass: "illuminance", Unit: "lx",
			},
		},
	}
}

func (f *Factory) GetLightTranslator(lightType string) LightTranslator {
	if t, ok := f.lights[lightType]; ok {
		return t
	}
	return f.lights["Extended color light"]
}

// GetSensorTranslator reports false for sensor types with no entity counterpart
// (switches, daylight, CLIP flags).
func (f *Factory) GetSensorTranslator(sensorType string) (SensorTranslator, bool) {
	t, ok := f.sensors[sensorType]
	return t, ok
}
