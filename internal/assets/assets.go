package assets

// LoadIcons loads the icon for each kind from loader.
// The result maps kind to SVG markup.
func LoadIcons(loader AssetLoader, kinds []string) (map[string]string, error) {
	icons := make(map[string]string, len(kinds))
	for _, kind := range kinds {
		icon, err := loader.LoadIcon(kind)
		if err != nil {
			return nil, err
		}
		icons[kind] = icon
	}
	return icons, nil
}
