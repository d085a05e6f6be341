// Package shared holds small helpers used across the command layer.
package shared

import (
	"github.com/spf13/pflag"
)

// HasFlags reports whether any flag in the set was changed on the command
// line. Commands use it to show help when invoked without arguments.
func HasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.Visit(func(*pflag.Flag) {
		changed = true
	})
	return changed
}

// IsInList reports whether value is one of the allowed values.
func IsInList(value string, list []string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
