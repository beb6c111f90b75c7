package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

const (
	ValidationRuleRequired = "required"
	ValidationRulePattern  = "pattern"
	ValidationRuleCustom   = "validate"
)

// ValidationRule mirrors a registered rule so renderers can surface hints
// (required markers, pattern attributes) without importing the engine.
// Pattern rules keep the expression in Params["pattern"]; custom rules keep
// their name in Params["name"].
type ValidationRule struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
}

// Field models an individual input of the form. Name is the dotted path the
// engine uses ("social.twitter", "phoneNumbers.0"); array rows use a "*"
// segment ("phNumbers.*.number").
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Input       string            `json:"input,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Nested      []Field           `json:"nested,omitempty"`
	Items       *Field            `json:"items,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Actions     []Action          `json:"actions,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Action is a button rendered under the form. Type is the HTML button type
// ("submit" or "button").
type Action struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
}

// Field returns the field registered under name, walking nested groups.
func (m FormModel) Field(name string) (Field, bool) {
	return findField(m.Fields, name)
}

func findField(fields []Field, name string) (Field, bool) {
	for _, field := range fields {
		if field.Name == name {
			return field, true
		}
		if found, ok := findField(field.Nested, name); ok {
			return found, true
		}
		if field.Items != nil && field.Items.Name == name {
			return *field.Items, true
		}
	}
	return Field{}, false
}

// Leaves flattens the model into the list of input-bearing fields in
// declaration order. Group fields (objects, arrays) are skipped but their
// children and item templates are included.
func (m FormModel) Leaves() []Field {
	var out []Field
	collectLeaves(m.Fields, &out)
	return out
}

func collectLeaves(fields []Field, out *[]Field) {
	for _, field := range fields {
		switch {
		case len(field.Nested) > 0:
			collectLeaves(field.Nested, out)
		case field.Items != nil:
			collectLeaves([]Field{*field.Items}, out)
		default:
			*out = append(*out, field)
		}
	}
}
