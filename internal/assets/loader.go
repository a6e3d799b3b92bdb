package assets

// AssetLoader defines the contract for loading styles, templates and icons.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the fragment and document templates of a set.
	// Returns ErrTemplateSetNotFound if the set doesn't exist.
	LoadTemplateSet(name string) (*TemplateSet, error)

	// LoadIcon loads the SVG icon for a callout kind.
	// Returns ErrIconNotFound if there is no icon for the kind.
	LoadIcon(kind string) (string, error)
}
