// Package ptr provides pointer helpers for tool annotations and JSON output.
package ptr

import "github.com/samber/mo"

// Bool returns a pointer to the given bool value.
func Bool(b bool) *bool { return &b }

// FromOption returns a pointer to the option's value, or nil when it is
// absent. Output structs use it so a present zero value still marshals.
func FromOption[T any](o mo.Option[T]) *T {
	v, ok := o.Get()
	if !ok {
		return nil
	}
	return &v
}
