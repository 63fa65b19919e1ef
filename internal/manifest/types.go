package manifest

// DefaultProjectStyle is the style of templates that do not declare one
const DefaultProjectStyle = "Codewind"

// Descriptor is a single template entry as published in a manifest
type Descriptor struct {
	DisplayName  string            `json:"displayName"`
	Description  string            `json:"description,omitempty"`
	Language     string            `json:"language,omitempty"`
	ProjectType  string            `json:"projectType,omitempty"`
	ProjectStyle string            `json:"projectStyle,omitempty"`
	Location     string            `json:"location"`
	Links        map[string]string `json:"links,omitempty"`
}

// Group is a list of descriptors sharing a project style.
// Style is empty for flat indexes, where every descriptor names its own style.
type Group struct {
	Style       string
	Descriptors []Descriptor
}

// Manifest is a parsed manifest, groups kept in document order
type Manifest struct {
	Groups []Group
}

// Template is the normalized record the registry exposes for a descriptor
type Template struct {
	Label        string `json:"label"`
	Description  string `json:"description,omitempty"`
	Language     string `json:"language,omitempty"`
	URL          string `json:"url"`
	ProjectType  string `json:"projectType,omitempty"`
	ProjectStyle string `json:"projectStyle"`
	Source       string `json:"source,omitempty"`
	SourceURL    string `json:"sourceURL"`
}

// Len returns the number of descriptors across all groups
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, g := range m.Groups {
		n += len(g.Descriptors)
	}
	return n
}

// Templates flattens the manifest into templates tagged with their style and
// the repository they came from.
func (m *Manifest) Templates(sourceURL, source string) []Template {
	templates := make([]Template, 0, m.Len())
	if m == nil {
		return templates
	}
	for _, g := range m.Groups {
		for _, d := range g.Descriptors {
			templates = append(templates, Template{
				Label:        d.DisplayName,
				Description:  d.Description,
				Language:     d.Language,
				URL:          d.Location,
				ProjectType:  d.ProjectType,
				ProjectStyle: styleOf(g, d),
				Source:       source,
				SourceURL:    sourceURL,
			})
		}
	}
	return templates
}

func styleOf(g Group, d Descriptor) string {
	if g.Style != "" {
		return g.Style
	}
	if d.ProjectStyle != "" {
		return d.ProjectStyle
	}
	return DefaultProjectStyle
}
