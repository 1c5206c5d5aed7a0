package ports

// ConfigLookup resolves named configuration values.
type ConfigLookup interface {
	// Get returns the value for name and whether it is set.
	Get(name string) (string, bool)
}

// MapConfig is a ConfigLookup backed by a plain map.
type MapConfig map[string]string

// Get implements ConfigLookup.
func (m MapConfig) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}
