package contracts

import (
	"fmt"

	"github.com/kingrea/regen/internal/artifact"
)

// ValidateContribution compares a against the snapshot taken before the named
// layer ran.
func ValidateContribution(layerName string, before Snapshot, a *artifact.Artifact) []error {
	if a == nil {
		return []error{fmt.Errorf("artifact is nil")}
	}
	var errs []error
	after := Take(a)
	added := after.Layers - before.Layers
	switch {
	case added == 0:
		errs = append(errs, fmt.Errorf("no layer record appended"))
	case added < 0:
		errs = append(errs, fmt.Errorf("removed %d existing layer record(s)", -added))
	case added > 1:
		errs = append(errs, fmt.Errorf("appended %d layer records, expected 1", added))
	}
	if added > 0 {
		for i := before.Layers; i < after.Layers; i++ {
			if got := a.Layers[i].Name; got != layerName {
				errs = append(errs, fmt.Errorf("layers[%d].name is %q, expected %q", i, got, layerName))
			}
		}
	}
	if after.Parameters < before.Parameters {
		errs = append(errs, fmt.Errorf("removed %d existing parameter(s)", before.Parameters-after.Parameters))
	}
	if after.SubAssets < before.SubAssets {
		errs = append(errs, fmt.Errorf("removed %d existing sub-asset(s)", before.SubAssets-after.SubAssets))
	}
	return errs
}
