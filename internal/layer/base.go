package layer

// Base provides common plumbing for layers (name + watch set).
type Base struct {
	name     string
	watching []string
}

// NewBase seeds the helper with the layer name.
func NewBase(name string) Base {
	return Base{name: name}
}

// Watch declares the project paths the layer reads.
func (b *Base) Watch(paths ...string) {
	b.watching = append([]string{}, paths...)
}

// Name implements Layer.Name.
func (b *Base) Name() string {
	return b.name
}

// WatchingObjects implements Layer.WatchingObjects.
func (b *Base) WatchingObjects() []string {
	return append([]string{}, b.watching...)
}
