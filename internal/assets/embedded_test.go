package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		styleName   string
		wantErr     error
		wantContain string
	}{
		{
			name:        "loads default style",
			styleName:   DefaultStyleName,
			wantContain: ".qmd-callout",
		},
		{
			name:      "returns ErrStyleNotFound for nonexistent",
			styleName: "nonexistent-style-xyz",
			wantErr:   ErrStyleNotFound,
		},
		{
			name:      "returns ErrInvalidAssetName for empty name",
			styleName: "",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "returns ErrInvalidAssetName for path traversal",
			styleName: "../secret",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "returns ErrInvalidAssetName for name with dot",
			styleName: "style.name",
			wantErr:   ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadStyle(tt.styleName)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("LoadStyle(%q) unexpected error: %v", tt.styleName, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("LoadStyle(%q) content should contain %q", tt.styleName, tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_LoadTemplateSet(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	t.Run("loads default set", func(t *testing.T) {
		t.Parallel()

		ts, err := loader.LoadTemplateSet(DefaultTemplateSetName)
		if err != nil {
			t.Fatalf("LoadTemplateSet() error = %v", err)
		}
		if ts.Name != DefaultTemplateSetName {
			t.Errorf("Name = %q, want %q", ts.Name, DefaultTemplateSetName)
		}
		if !strings.Contains(ts.Fragment, "qmd-rendered-content") {
			t.Error("Fragment template should contain the rendered container id")
		}
		if !strings.Contains(ts.Document, "<!DOCTYPE html>") {
			t.Error("Document template should contain a doctype")
		}
	})

	t.Run("nonexistent set", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplateSet("nonexistent")
		if !errors.Is(err, ErrTemplateSetNotFound) {
			t.Errorf("LoadTemplateSet() error = %v, want ErrTemplateSetNotFound", err)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplateSet("../default")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadTemplateSet() error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestEmbeddedLoader_LoadIcon(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	seen := make(map[string]string)
	for _, kind := range []string{"note", "warning", "important", "tip", "caution"} {
		icon, err := loader.LoadIcon(kind)
		if err != nil {
			t.Fatalf("LoadIcon(%q) error = %v", kind, err)
		}
		if !strings.HasPrefix(icon, "<svg") {
			t.Errorf("LoadIcon(%q) = %q, want SVG markup", kind, icon)
		}
		if other, dup := seen[icon]; dup {
			t.Errorf("LoadIcon(%q) returned the same icon as %q", kind, other)
		}
		seen[icon] = kind
	}

	if _, err := loader.LoadIcon("danger"); !errors.Is(err, ErrIconNotFound) {
		t.Errorf("LoadIcon(danger) error = %v, want ErrIconNotFound", err)
	}
}

func TestLoadIcons(t *testing.T) {
	t.Parallel()

	t.Run("loads every kind", func(t *testing.T) {
		t.Parallel()

		icons, err := LoadIcons(NewEmbeddedLoader(), []string{"note", "tip"})
		if err != nil {
			t.Fatalf("LoadIcons() error = %v", err)
		}
		if len(icons) != 2 {
			t.Errorf("len(icons) = %d, want 2", len(icons))
		}
	})

	t.Run("missing kind fails", func(t *testing.T) {
		t.Parallel()

		_, err := LoadIcons(NewEmbeddedLoader(), []string{"note", "missing"})
		if !errors.Is(err, ErrIconNotFound) {
			t.Errorf("LoadIcons() error = %v, want ErrIconNotFound", err)
		}
	})
}
