package cmd

import (
	"fmt"

	errs "github.com/khanhnv2901/sitecheck/internal/shared/errors"
)

// InvalidTargetError indicates the URL argument could not be scanned at all.
type InvalidTargetError struct {
	Input  string
	Reason string
}

func (e *InvalidTargetError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("invalid target: %s", e.Reason)
	}
	return fmt.Sprintf("invalid target %q: %s", e.Input, e.Reason)
}

func (e *InvalidTargetError) Unwrap() error {
	return errs.ErrInvalidTarget
}

// InsecureSiteError is returned with --fail-insecure when the verdict is negative.
type InsecureSiteError struct {
	Target  string
	Summary string
}

func (e *InsecureSiteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Target, e.Summary)
}

// InvalidConfigError signals a flag or config value outside its allowed range.
type InvalidConfigError struct {
	Key    string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
}

func (e *InvalidConfigError) Unwrap() error {
	return errs.ErrValidation
}
