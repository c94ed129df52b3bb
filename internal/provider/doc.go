// Package provider defines the state provider capability and the built-in
// providers.
//
// A provider is a small synchronous wrapper around a filesystem read or a
// single external query command. It returns a snapshot: a map of state keys
// to typed values. Providers keep whatever previous-observation state they
// need to derive keys such as last_updated_interface, so a provider instance
// must only be called from one goroutine (the driver loop).
//
// Built-in providers:
//   - net:     /sys/class/net/*/operstate
//   - lid:     /proc/acpi/button/lid/LID/state
//   - monitor: xrandr -q
package provider
