package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
)

//go:embed styles/*
var styles embed.FS

//go:embed templates/*
var templates embed.FS

//go:embed icons/*
var icons embed.FS

// EmbeddedLoader loads assets from embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a CSS style from embedded assets by name.
// The name should not include the .css extension.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// LoadTemplateSet loads a template set from embedded assets by name.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir := "templates/" + name + "/"
	fragment, fragErr := templates.ReadFile(dir + fragmentFile)
	document, docErr := templates.ReadFile(dir + documentFile)

	if errors.Is(fragErr, fs.ErrNotExist) && errors.Is(docErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if fragErr != nil {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, fragmentFile)
	}
	if docErr != nil {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, documentFile)
	}

	return &TemplateSet{
		Name:     name,
		Fragment: string(fragment),
		Document: string(document),
	}, nil
}

// LoadIcon loads a callout icon from embedded assets by kind.
func (e *EmbeddedLoader) LoadIcon(kind string) (string, error) {
	if err := ValidateAssetName(kind); err != nil {
		return "", err
	}

	content, err := icons.ReadFile("icons/" + kind + ".svg")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrIconNotFound, kind)
	}

	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
