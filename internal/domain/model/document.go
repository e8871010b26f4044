package model

const SectionTypeGrid = "grid"

type Section struct {
	Type  string   `json:"type"`
	Title string   `json:"title,omitempty"`
	Cards []Config `json:"cards"`
}

func GridSection(cards ...Config) Section {
	return Section{Type: SectionTypeGrid, Cards: cards}
}

// View is one generated dashboard view.
type View struct {
	ID       string    `json:"-"`
	Title    string    `json:"title,omitempty"`
	Path     string    `json:"path,omitempty"`
	Icon     string    `json:"icon,omitempty"`
	Type     string    `json:"type,omitempty"`
	Subview  bool      `json:"subview,omitempty"`
	Badges   []Config  `json:"badges"`
	Sections []Section `json:"sections"`
	Cards    []Config  `json:"cards"`
	// Raw carries a user-supplied view verbatim.
	Raw Config `json:"-"`
}

// Document renders the view the way the host consumes it.
func (v View) Document() Config {
	if v.Raw != nil {
		return v.Raw.Clone()
	}
	sections := make([]interface{}, 0, len(v.Sections))
	for _, s := range v.Sections {
		cards := make([]interface{}, 0, len(s.Cards))
		for _, c := range s.Cards {
			cards = append(cards, c)
		}
		sc := Config{"type": s.Type, "cards": cards}
		if s.Title != "" {
			sc["title"] = s.Title
		}
		sections = append(sections, sc)
	}
	doc := Config{
		"badges":   toList(v.Badges),
		"sections": sections,
		"cards":    toList(v.Cards),
	}
	if v.Title != "" {
		doc["title"] = v.Title
	}
	if v.Path != "" {
		doc["path"] = v.Path
	}
	if v.Icon != "" {
		doc["icon"] = v.Icon
	}
	if v.Type != "" {
		doc["type"] = v.Type
	}
	if v.Subview {
		doc["subview"] = true
	}
	return doc
}

func toList(cs []Config) []interface{} {
	out := make([]interface{}, 0, len(cs))
	for _, c := range cs {
		out = append(out, c)
	}
	return out
}

type Dashboard struct {
	Views []View
}

func (d *Dashboard) Document() Config {
	views := make([]interface{}, 0, len(d.Views))
	for _, v := range d.Views {
		views = append(views, v.Document())
	}
	return Config{"views": views}
}
