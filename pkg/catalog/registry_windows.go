//go:build windows

// pkg/catalog/registry_windows.go - HKEY_CLASSES_ROOT key enumeration.

package catalog

import (
	"errors"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

type classesRootEnumerator struct{}

func newClassesRootEnumerator() KeyEnumerator {
	return classesRootEnumerator{}
}

// SubKeyName enumerates HKEY_CLASSES_ROOT one index at a time so the end of
// the enumeration can be told apart from real failures.
func (classesRootEnumerator) SubKeyName(index uint32) (string, error) {
	buf := make([]uint16, 256)
	n := uint32(len(buf))
	err := windows.RegEnumKeyEx(windows.Handle(registry.CLASSES_ROOT), index, &buf[0], &n, nil, nil, nil, nil)
	if errors.Is(err, windows.ERROR_NO_MORE_ITEMS) {
		return "", ErrEndOfEnumeration
	}
	if err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:n]), nil
}

func (classesRootEnumerator) OpenCommand(key string) (string, error) {
	k, err := registry.OpenKey(registry.CLASSES_ROOT, key+`\shell\open\command`, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", ErrNoCommand
		}
		return "", err
	}
	defer k.Close()

	value, _, err := k.GetStringValue("")
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", ErrNoCommand
		}
		return "", err
	}
	return value, nil
}
