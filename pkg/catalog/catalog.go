// pkg/catalog/catalog.go - session-local catalog of installed host application versions.

package catalog

import (
	"sort"

	"github.com/windowsadmins/tdlauncher/pkg/build"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
)

// InstalledVersion is one locally installed release.
type InstalledVersion struct {
	ID             build.ID `yaml:"id"`
	ExecutablePath string   `yaml:"executable_path"`
	BundlePath     string   `yaml:"bundle_path,omitempty"`    // set only for app bundles
	BundleVersion  string   `yaml:"bundle_version,omitempty"` // raw CFBundleVersion
	DisplayName    string   `yaml:"display_name,omitempty"`
}

// LaunchTarget is what the process launcher should open: the bundle when
// there is one, otherwise the executable.
func (v InstalledVersion) LaunchTarget() string {
	if v.BundlePath != "" {
		return v.BundlePath
	}
	return v.ExecutablePath
}

// Catalog maps canonical build strings to installed versions and keeps the
// identifiers sorted by (year, build). The zero value is empty and usable.
type Catalog struct {
	items   map[string]InstalledVersion
	ordered []build.ID
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{items: make(map[string]InstalledVersion)}
}

// Add inserts v. If the identifier is already present the first entry is
// kept and Add reports false.
func (c *Catalog) Add(v InstalledVersion) bool {
	key := v.ID.String()
	if c.items == nil {
		c.items = make(map[string]InstalledVersion)
	}
	if existing, ok := c.items[key]; ok {
		logging.Debug("Ignoring duplicate installation", "build", key, "kept", existing.ExecutablePath, "ignored", v.ExecutablePath)
		return false
	}
	c.items[key] = v

	i := sort.Search(len(c.ordered), func(i int) bool {
		return build.Less(v.ID, c.ordered[i])
	})
	c.ordered = append(c.ordered, build.ID{})
	copy(c.ordered[i+1:], c.ordered[i:])
	c.ordered[i] = v.ID
	return true
}

// Lookup returns the installation for id.
func (c *Catalog) Lookup(id build.ID) (InstalledVersion, bool) {
	if c == nil {
		return InstalledVersion{}, false
	}
	v, ok := c.items[id.String()]
	return v, ok
}

// Contains reports whether id is installed.
func (c *Catalog) Contains(id build.ID) bool {
	_, ok := c.Lookup(id)
	return ok
}

// Versions returns a copy of the ordered identifiers.
func (c *Catalog) Versions() []build.ID {
	if c == nil {
		return nil
	}
	out := make([]build.ID, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Installed returns all installations in catalog order.
func (c *Catalog) Installed() []InstalledVersion {
	if c == nil {
		return nil
	}
	out := make([]InstalledVersion, 0, len(c.ordered))
	for _, id := range c.ordered {
		out = append(out, c.items[id.String()])
	}
	return out
}

// Len returns the number of installations.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ordered)
}

// IndexOf returns the position of id in Versions, or -1.
func (c *Catalog) IndexOf(id build.ID) int {
	if c == nil {
		return -1
	}
	for i, v := range c.ordered {
		if v.Equal(id) {
			return i
		}
	}
	return -1
}

// Newest returns the highest installed build.
func (c *Catalog) Newest() (InstalledVersion, bool) {
	if c.Len() == 0 {
		return InstalledVersion{}, false
	}
	return c.Lookup(c.ordered[len(c.ordered)-1])
}
