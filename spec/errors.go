package spec

import "fmt"

// LookupError reports a missing specification entry. Template authors can
// reference unsupported or misspelled types, so this is an expected input
// condition, never a panic.
type LookupError struct {
	// ResourceType is the resource-type or property-type name that failed
	// to resolve.
	ResourceType string
	// PropertyPath names the property being classified when the lookup
	// failed, if any.
	PropertyPath string
}

func (e *LookupError) Error() string {
	if e.PropertyPath == "" {
		return fmt.Sprintf("no specification entry for %s", e.ResourceType)
	}
	return fmt.Sprintf("no specification entry for property %s of %s", e.PropertyPath, e.ResourceType)
}
