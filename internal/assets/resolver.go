package assets

// AssetResolver tries a custom directory before the embedded assets.
// Only a missing asset falls through; other errors are returned.
type AssetResolver struct {
	loaders []AssetLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath means
// embedded assets only.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if customBasePath != "" {
		dir, err := NewDirLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.loaders = append(r.loaders, dir)
	}
	r.loaders = append(r.loaders, NewEmbeddedLoader())
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, l := range r.loaders {
		var content string
		if content, err = load(l); err == nil || !isNotFound(err) {
			return content, err
		}
	}
	return "", err
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return len(r.loaders) > 1
}

var _ AssetLoader = (*AssetResolver)(nil)
