package uischema

// Store keeps the parsed layouts keyed by form id. Treat it as immutable
// after construction.
type Store struct {
	forms map[string]Layout
}

// Layout describes the presentation overrides for one form.
type Layout struct {
	ID     string
	Source string
	Form   FormConfig
	Fields map[string]FieldConfig
}

// FormConfig captures form-level copy and action buttons.
type FormConfig struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Actions     []ActionConfig `yaml:"actions"`
}

// ActionConfig describes one button rendered under the form.
type ActionConfig struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Type  string `yaml:"type,omitempty"`
}

// FieldConfig customises how a field is rendered.
type FieldConfig struct {
	Order       *int   `yaml:"order,omitempty"`
	Label       string `yaml:"label,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
	HelpText    string `yaml:"helpText,omitempty"`
	Input       string `yaml:"input,omitempty"`
	// DisabledWhen is a condition rule over the form values, e.g.
	// `channel == ""`. The field is disabled while it holds.
	DisabledWhen string            `yaml:"disabledWhen,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
}
