//go:build !windows

// pkg/config/registry_other.go - no registry overrides off Windows.

package config

func loadRegistryOverrides(*Configuration) {}
