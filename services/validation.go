// ABOUTME: Input validation for values placed into scheduler URLs
// ABOUTME: Prevents URL injection via virtual cluster name validation

package services

import (
	"fmt"
	"regexp"
	"strings"
)

// virtualClusterPattern matches valid virtual cluster names (alphanumeric, dots, hyphens, underscores)
var virtualClusterPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// ValidateVirtualClusterName validates that a virtual cluster name is safe to
// use as a path segment of the scheduler inspection API.
func ValidateVirtualClusterName(name string) error {
	if name == "" {
		return fmt.Errorf("virtual cluster name cannot be empty")
	}
	if len(name) > 253 {
		return fmt.Errorf("virtual cluster name too long: %d characters", len(name))
	}
	if !virtualClusterPattern.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid virtual cluster name format: %s", sanitizeForLog(name))
	}
	return nil
}
