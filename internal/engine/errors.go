package engine

import (
	"errors"
	"fmt"

	"github.com/SmileyChris/django-includecontents-sub001/internal/props"
)

// ResolutionError reports an invocation target the host loader could not
// resolve. From names the referencing template.
type ResolutionError struct {
	Target string
	From   string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("template %q: cannot resolve component %q: %v", e.From, e.Target, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsResolution reports whether err is a component resolution failure.
func IsResolution(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// IsValidation reports whether err is a render-time prop validation failure
// (missing required prop or out-of-enum value).
func IsValidation(err error) bool {
	var missing *props.MissingPropError
	var enum *props.EnumValueError
	return errors.As(err, &missing) || errors.As(err, &enum)
}
