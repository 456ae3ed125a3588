//go:build windows

// pkg/config/registry_windows.go - HKLM registry overrides for the configuration.

package config

import (
	"log"

	"golang.org/x/sys/windows/registry"
)

// loadRegistryOverrides applies values an administrator set under
// HKLM\SOFTWARE\TDLauncher\Config. A missing key is the normal case.
func loadRegistryOverrides(cfg *Configuration) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, RegistryPath, registry.QUERY_VALUE)
	if err != nil {
		return
	}
	defer key.Close()

	loadStringFromRegistry(key, "DownloadBaseURL", &cfg.DownloadBaseURL)
	loadStringFromRegistry(key, "InspectorPath", &cfg.InspectorPath)
	loadStringFromRegistry(key, "DownloadDir", &cfg.DownloadDir)
	loadIntFromRegistry(key, "CountdownSeconds", &cfg.CountdownSeconds)
}

// loadStringFromRegistry loads a string value from registry if it exists.
func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		*target = val
		log.Printf("Registry: Loaded %s = %s", valueName, val)
	}
}

// loadIntFromRegistry loads a DWORD value from registry if it exists.
func loadIntFromRegistry(key registry.Key, valueName string, target *int) {
	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = int(val)
		log.Printf("Registry: Loaded %s = %d", valueName, int(val))
	}
}
