//go:build !windows

// pkg/catalog/registry_other.go - empty registry enumerator off Windows.

package catalog

type noRegistry struct{}

func newClassesRootEnumerator() KeyEnumerator {
	return noRegistry{}
}

func (noRegistry) SubKeyName(uint32) (string, error) { return "", ErrEndOfEnumeration }

func (noRegistry) OpenCommand(string) (string, error) { return "", ErrNoCommand }
