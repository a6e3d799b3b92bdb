package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader loads assets from a directory on the filesystem.
// Implements AssetLoader interface.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader creates a FilesystemLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	// Resolve symlinks in base path so containment checks compare real paths
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{basePath: absPath}, nil
}

// LoadStyle loads a CSS style from {basePath}/styles/{name}.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	return f.readAsset(filepath.Join(f.basePath, "styles", name+".css"), ErrStyleNotFound, name)
}

// LoadIcon loads a callout icon from {basePath}/icons/{kind}.svg.
func (f *FilesystemLoader) LoadIcon(kind string) (string, error) {
	if err := ValidateAssetName(kind); err != nil {
		return "", err
	}
	return f.readAsset(filepath.Join(f.basePath, "icons", kind+".svg"), ErrIconNotFound, kind)
}

// LoadTemplateSet loads {basePath}/templates/{name}/fragment.html and document.html.
func (f *FilesystemLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dirPath := filepath.Join(f.basePath, "templates", name)
	if err := f.verifyPathContainment(dirPath + string(filepath.Separator)); err != nil {
		return nil, err
	}

	fragment, fragErr := os.ReadFile(filepath.Join(dirPath, fragmentFile)) // #nosec G304 -- path validated above
	document, docErr := os.ReadFile(filepath.Join(dirPath, documentFile))  // #nosec G304 -- path validated above

	if os.IsNotExist(fragErr) && os.IsNotExist(docErr) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}

	if fragErr != nil && !os.IsNotExist(fragErr) {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, fragmentFile, fragErr)
	}
	if docErr != nil && !os.IsNotExist(docErr) {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, documentFile, docErr)
	}

	if os.IsNotExist(fragErr) {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, fragmentFile)
	}
	if os.IsNotExist(docErr) {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, documentFile)
	}

	return &TemplateSet{
		Name:     name,
		Fragment: string(fragment),
		Document: string(document),
	}, nil
}

// readAsset reads a single asset file, mapping a missing file to notFound.
func (f *FilesystemLoader) readAsset(filePath string, notFound error, name string) (string, error) {
	if err := f.verifyPathContainment(filePath); err != nil {
		return "", err
	}

	content, err := os.ReadFile(filePath) // #nosec G304 -- path validated above
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", notFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}

	return string(content), nil
}

// verifyPathContainment ensures the resolved file path is within basePath,
// following symlinks so a link cannot point outside it.
func (f *FilesystemLoader) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// A missing file fails later on open; the prefix check still applies
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	if !strings.HasPrefix(absFilePath, f.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}

	return nil
}

// Compile-time interface check.
var _ AssetLoader = (*FilesystemLoader)(nil)
