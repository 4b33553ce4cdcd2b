package contracts

import (
	"testing"

	"github.com/kingrea/regen/internal/artifact"
)

func TestValidateContribution(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(a *artifact.Artifact)
		wantValid bool
	}{
		{
			name: "one-named-layer",
			mutate: func(a *artifact.Artifact) {
				a.AddLayer(artifact.Layer{Name: "Base"})
			},
			wantValid: true,
		},
		{
			name:      "nothing-appended",
			mutate:    func(a *artifact.Artifact) {},
			wantValid: false,
		},
		{
			name: "two-layers",
			mutate: func(a *artifact.Artifact) {
				a.AddLayer(artifact.Layer{Name: "Base"})
				a.AddLayer(artifact.Layer{Name: "Base"})
			},
			wantValid: false,
		},
		{
			name: "wrong-name",
			mutate: func(a *artifact.Artifact) {
				a.AddLayer(artifact.Layer{Name: "Other"})
			},
			wantValid: false,
		},
		{
			name: "removes-earlier-content",
			mutate: func(a *artifact.Artifact) {
				a.Layers = a.Layers[:0]
				a.AddLayer(artifact.Layer{Name: "Prior"})
				a.AddLayer(artifact.Layer{Name: "Base"})
				a.Parameters = nil
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := artifact.New("Assets/Out.controller")
			a.AddLayer(artifact.Layer{Name: "Prior"})
			if err := a.AddParameter(artifact.Parameter{Name: "Flag", Type: artifact.ParameterBool}); err != nil {
				t.Fatalf("AddParameter: %v", err)
			}
			before := Take(a)
			tt.mutate(a)
			report := Check("Base", before, a)
			if report.IsValid() != tt.wantValid {
				t.Fatalf("valid = %v, want %v (errors: %v)", report.IsValid(), tt.wantValid, report.Errors)
			}
			if tt.wantValid && report.Err() != nil {
				t.Fatalf("valid report returned error %v", report.Err())
			}
		})
	}
}

func TestValidateNilArtifact(t *testing.T) {
	if errs := ValidateContribution("Base", Snapshot{}, nil); len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
}
