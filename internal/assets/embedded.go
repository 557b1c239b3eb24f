package assets

import "embed"

//go:embed styles templates
var builtin embed.FS

// EmbeddedLoader loads the card assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (*EmbeddedLoader) LoadStyle(name string) (string, error) {
	return read(builtin, styleKind, name)
}

func (*EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return read(builtin, templateKind, name)
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
