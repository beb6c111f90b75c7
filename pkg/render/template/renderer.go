package template

import (
	"io"
)

// TemplateRenderer is the contract renderers depend on. Implementations
// load named templates, render ad-hoc strings and expose filter and global
// registration.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
