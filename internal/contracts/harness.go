package contracts

import (
	"errors"

	"github.com/kingrea/regen/internal/artifact"
)

// Report captures validation results for one layer invocation.
type Report struct {
	Layer  string
	Errors []error
}

// Check validates the contribution of layerName and returns a report.
func Check(layerName string, before Snapshot, a *artifact.Artifact) *Report {
	return &Report{
		Layer:  layerName,
		Errors: ValidateContribution(layerName, before, a),
	}
}

// IsValid reports whether the validation passed.
func (r *Report) IsValid() bool {
	return r != nil && len(r.Errors) == 0
}

// Err joins the report's errors, or returns nil when valid.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.Errors...)
}
