package classify

// Verdict is the tri-state classification of a completed run.
type Verdict int

const (
	Indeterminate Verdict = iota
	Succeeded
	Failed
)

func (v Verdict) String() string {
	switch v {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "indeterminate"
	}
}

// Policy decides how contradictory output (both marker sets present) is
// resolved. Error-dominant is the conservative default: partial logs can
// carry an early failure plus a later success banner from an unrelated
// subroutine.
type Policy struct {
	ErrorDominant bool
}

// DefaultPolicy returns the error-dominant policy.
func DefaultPolicy() Policy {
	return Policy{ErrorDominant: true}
}

// Judge maps a marker report to a verdict under this policy.
func (p Policy) Judge(r Report) Verdict {
	switch {
	case r.HasError && r.HasSuccess:
		if p.ErrorDominant {
			return Failed
		}
		return Succeeded
	case r.HasError:
		return Failed
	case r.HasSuccess:
		return Succeeded
	default:
		return Indeterminate
	}
}
