package disposal

import "testing"

func TestReasonIsValid(t *testing.T) {
	valid := []Reason{ReasonExpired, ReasonDamaged, ReasonLost, ReasonOther}
	for _, r := range valid {
		if !r.IsValid() {
			t.Errorf("reason %q should be valid", r)
		}
	}

	invalid := []Reason{"", "stolen", "EXPIRED", "misc"}
	for _, r := range invalid {
		if r.IsValid() {
			t.Errorf("reason %q should be rejected", r)
		}
	}
}
