package versioning

// Template is a starter document offered by the template gallery.
type Template struct {
	ID             string `yaml:"id" json:"id"`
	Label          string `yaml:"label" json:"label"`
	ImageURL       string `yaml:"image_url" json:"image_url"`
	InitialContent string `yaml:"initial_content" json:"-"` // HTML, converted on use
}
