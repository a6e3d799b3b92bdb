// Package assets provides the stylesheet, HTML templates and callout icons
// used to render QMD documents. Assets can be loaded from embedded files or
// a custom directory on disk.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the converter. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when an asset is
// not found, so a custom directory only needs the files it overrides.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # Stylesheets
//	├── templates/
//	│   └── {name}/
//	│       ├── fragment.html    # Metadata header + content wrapper
//	│       └── document.html    # Standalone HTML page
//	└── icons/
//	    └── {kind}.svg           # Callout icons (note, warning, ...)
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
