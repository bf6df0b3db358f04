package ir

import (
	"fmt"
	"strings"
)

// IntrinsicError reports an intrinsic-function operand that does not match
// its required literal shape. The message always names the intrinsic.
type IntrinsicError struct {
	Fn     string
	Reason string
}

func (e *IntrinsicError) Error() string {
	return fmt.Sprintf("malformed %s intrinsic: %s", e.Fn, e.Reason)
}

// ResourceError wraps a translation failure with the resource and property
// it occurred in. Property is empty when the resource type itself failed to
// resolve.
type ResourceError struct {
	Resource string
	Property string
	Err      error
}

func (e *ResourceError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("resource %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("resource %s, property %s: %v", e.Resource, e.Property, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Report aggregates one error per failed resource so a single malformed
// resource does not hide diagnostics for the rest of the template.
type Report struct {
	Errors []*ResourceError
}

func (r *Report) Error() string {
	if len(r.Errors) == 1 {
		return r.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d resources failed translation:", len(r.Errors))
	for _, e := range r.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}
