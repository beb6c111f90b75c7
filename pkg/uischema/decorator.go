package uischema

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/pkg/model"
)

// Decorate applies layout to form. Fields are sorted by their configured
// order (unordered fields keep their relative position after ordered ones);
// labels, placeholders, help text and input kinds override the model values
// when set.
func Decorate(form model.FormModel, layout Layout) model.FormModel {
	out := form
	if title := strings.TrimSpace(layout.Form.Title); title != "" {
		out.Title = title
	}
	if desc := strings.TrimSpace(layout.Form.Description); desc != "" {
		out.Description = desc
	}
	if len(layout.Form.Actions) > 0 {
		out.Actions = make([]model.Action, 0, len(layout.Form.Actions))
		for _, action := range layout.Form.Actions {
			kind := strings.TrimSpace(action.Type)
			if kind == "" {
				kind = "button"
			}
			out.Actions = append(out.Actions, model.Action{
				Name:  strings.TrimSpace(action.Name),
				Label: action.Label,
				Type:  kind,
			})
		}
	}
	out.Fields = decorateFields(form.Fields, layout.Fields)
	return out
}

func decorateFields(fields []model.Field, configs map[string]FieldConfig) []model.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]model.Field, len(fields))
	for i, field := range fields {
		out[i] = decorateField(field, configs)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return orderOf(out[i].Name, configs) < orderOf(out[j].Name, configs)
	})
	return out
}

func decorateField(field model.Field, configs map[string]FieldConfig) model.Field {
	if cfg, ok := configs[field.Name]; ok {
		if cfg.Label != "" {
			field.Label = cfg.Label
		}
		if cfg.Placeholder != "" {
			field.Placeholder = cfg.Placeholder
		}
		if cfg.HelpText != "" {
			field.Description = cfg.HelpText
		}
		if cfg.Input != "" {
			field.Input = cfg.Input
		}
		if len(cfg.Metadata) > 0 {
			merged := make(map[string]string, len(field.Metadata)+len(cfg.Metadata))
			for k, v := range field.Metadata {
				merged[k] = v
			}
			for k, v := range cfg.Metadata {
				merged[k] = v
			}
			field.Metadata = merged
		}
	}
	if len(field.Nested) > 0 {
		field.Nested = decorateFields(field.Nested, configs)
	}
	if field.Items != nil {
		item := decorateField(*field.Items, configs)
		field.Items = &item
	}
	return field
}

const unordered = int(^uint(0) >> 1)

func orderOf(name string, configs map[string]FieldConfig) int {
	if cfg, ok := configs[name]; ok && cfg.Order != nil {
		return *cfg.Order
	}
	return unordered
}
