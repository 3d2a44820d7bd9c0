package daemon

import (
	"math"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

// ProgressFromValue maps an inbound progress value to the indicator state.
// A missing, zero, negative, or NaN value clears the indicator; values in
// (0,1] show proportional progress; anything above 1 is indeterminate.
func ProgressFromValue(v *float64) domain.Progress {
	if v == nil || math.IsNaN(*v) || *v <= 0 {
		return domain.Progress{Mode: domain.ProgressNone}
	}
	if *v > 1 {
		return domain.Progress{Mode: domain.ProgressIndeterminate}
	}
	return domain.Progress{Mode: domain.ProgressNormal, Fraction: *v}
}
