package model

import "strings"

// Config is one declarative card, chip, badge, section or view object.
type Config map[string]interface{}

// Merge deep-merges layers into a new Config. Later layers win per key, nested
// maps merge recursively and slices are replaced wholesale. Inputs are not modified.
func Merge(layers ...Config) Config {
	out := Config{}
	for _, layer := range layers {
		mergeInto(out, layer)
	}
	return out
}

func mergeInto(dst, src Config) {
	for k, v := range src {
		srcMap, srcIsMap := asConfig(v)
		if !srcIsMap {
			dst[k] = clone(v)
			continue
		}
		if dstMap, ok := asConfig(dst[k]); ok {
			merged := dstMap.Clone()
			mergeInto(merged, srcMap)
			dst[k] = merged
			continue
		}
		dst[k] = clone(srcMap)
	}
}

func asConfig(v interface{}) (Config, bool) {
	switch m := v.(type) {
	case Config:
		return m, m != nil
	case map[string]interface{}:
		return Config(m), m != nil
	}
	return nil, false
}

func clone(v interface{}) interface{} {
	switch t := v.(type) {
	case Config:
		out := make(Config, len(t))
		for k, e := range t {
			out[k] = clone(e)
		}
		return out
	case map[string]interface{}:
		return clone(Config(t))
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	case []Config:
		out := make([]Config, len(t))
		for i, e := range t {
			out[i] = clone(e).(Config)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	return clone(c).(Config)
}

// Without returns a copy of c minus keys.
func (c Config) Without(keys ...string) Config {
	out := c.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func (c Config) String(key string) string {
	v, _ := c[key].(string)
	return v
}

// CardType is either the builder's own type or a caller-chosen custom type.
type CardType struct {
	custom string
}

// DefaultType keeps the builder's authoritative type.
func DefaultType() CardType { return CardType{} }

func CustomType(name string) CardType {
	if name == "" || strings.EqualFold(name, "default") {
		return CardType{}
	}
	return CardType{custom: name}
}

func (t CardType) IsDefault() bool { return t.custom == "" }

// Resolve returns the custom type, or builtin for Default.
func (t CardType) Resolve(builtin string) string {
	if t.custom == "" {
		return builtin
	}
	return t.custom
}

// SplitType separates a raw "type" key from the rest of the options. A missing
// type or the literal "default" yields DefaultType.
func SplitType(c Config) (CardType, Config) {
	if c == nil {
		return DefaultType(), Config{}
	}
	raw, _ := c["type"].(string)
	return CustomType(raw), c.Without("type")
}

// Compose layers caller options over a builder's built-in object. The
// built-in type stays unless a layer names a custom one.
func Compose(builtin Config, layers ...Config) Config {
	out := Merge(builtin)
	for _, layer := range layers {
		t, rest := SplitType(layer)
		out = Merge(out, rest)
		if !t.IsDefault() {
			out["type"] = t.Resolve("")
		}
	}
	return out
}

// Compact drops nil objects and objects whose "entity" key is present but empty.
func Compact(cs ...Config) []Config {
	out := make([]Config, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		if id, ok := c["entity"]; ok && (id == nil || id == "") {
			continue
		}
		out = append(out, c)
	}
	return out
}
