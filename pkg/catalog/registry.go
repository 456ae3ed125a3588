// pkg/catalog/registry.go - discovery of installed versions from class registrations.

package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/windowsadmins/tdlauncher/pkg/build"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
)

// DefaultMaxKeys bounds the class-root enumeration.
const DefaultMaxKeys = 16384

// ErrEndOfEnumeration signals that no subkey exists at the requested index.
var ErrEndOfEnumeration = errors.New("no more registry keys")

// ErrNoCommand signals that a key has no shell\open\command value.
var ErrNoCommand = errors.New("no open command registered")

// KeyEnumerator reads class registrations by index.
type KeyEnumerator interface {
	// SubKeyName returns the name at index, or ErrEndOfEnumeration.
	SubKeyName(index uint32) (string, error)
	// OpenCommand returns the default value of <key>\shell\open\command.
	OpenCommand(key string) (string, error)
}

// RegistryScanner finds installations registered under HKEY_CLASSES_ROOT.
type RegistryScanner struct {
	Product string
	Keys    KeyEnumerator
	MaxKeys int
}

// Scan implements Scanner.
func (s *RegistryScanner) Scan(ctx context.Context) (*Catalog, error) {
	limit := s.MaxKeys
	if limit <= 0 {
		limit = DefaultMaxKeys
	}

	var matches []string
	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return nil, &ScanError{Source: "registry", Err: err}
		}
		name, err := s.Keys.SubKeyName(uint32(i))
		if errors.Is(err, ErrEndOfEnumeration) {
			logging.Debug("Reached end of registry, finishing scan", "keys", i)
			break
		}
		if err != nil {
			return nil, &ScanError{Source: "registry", Err: err}
		}
		if MatchesProductKey(name, s.Product) {
			matches = append(matches, name)
		}
		if i == limit-1 {
			logging.Warn("Registry scan stopped at key limit", "limit", limit)
		}
	}

	cat := New()
	for _, name := range matches {
		id, err := build.Parse(name)
		if err != nil {
			logging.Warn("Skipping unparsable registry key", "key", name, "error", err)
			continue
		}
		id.Product = s.Product

		command, err := s.Keys.OpenCommand(name)
		if err != nil {
			logging.Warn("Skipping registry key without open command", "key", name, "error", err)
			continue
		}
		exe, ok := QuotedExecutable(command)
		if !ok {
			logging.Warn("Skipping registry key with unquoted open command", "key", name, "command", command)
			continue
		}
		cat.Add(InstalledVersion{ID: id, ExecutablePath: exe, DisplayName: name})
		logging.Debug("Found installation", "build", id.String(), "executable", exe)
	}
	logging.Info("Registry scan complete", "installed", cat.Len())
	return cat, nil
}

// MatchesProductKey keeps "<Product>[suffix].<year>.<build>" keys and drops
// variant entries such as "<Product>.<year>.<build>.Asset".
func MatchesProductKey(name, product string) bool {
	return strings.Contains(name, product) && strings.Count(name, ".") == 2
}

// QuotedExecutable returns the first double-quoted substring of an open
// command such as `"C:\TD\bin\TouchDesigner.exe" "%1"`.
func QuotedExecutable(command string) (string, bool) {
	parts := strings.SplitN(command, `"`, 3)
	if len(parts) < 3 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
