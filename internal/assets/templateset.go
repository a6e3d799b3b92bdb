package assets

// TemplateSet holds the HTML templates for one rendering theme.
type TemplateSet struct {
	Name     string // Identifier (name or directory path)
	Fragment string // Rendered fragment: metadata header and content wrapper
	Document string // Standalone page wrapping a fragment
}

// Template file names inside a template set directory.
const (
	fragmentFile = "fragment.html"
	documentFile = "document.html"
)

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"
