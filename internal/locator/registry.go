package locator

// RegistryRoot selects the predefined hive a Registry locator reads from.
type RegistryRoot int

const (
	CurrentUser RegistryRoot = iota
	LocalMachine
)

// Registry reads an installation root from a string value of a registry key.
// It locates nothing on platforms without a registry.
type Registry struct {
	Root  RegistryRoot
	Path  string
	Value string
}

func (r Registry) Locate() string {
	return r.lookup()
}
