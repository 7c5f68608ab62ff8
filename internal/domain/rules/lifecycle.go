package rules

import "github.com/zilaportal/portal/internal/domain/enums"

// ContentTransition validates a status change of submittable content or an
// access request. Only PENDING items move, and only to a terminal state.
func ContentTransition(from, to enums.ContentStatus) error {
	if from == enums.ContentStatusPending && to.Terminal() {
		return nil
	}
	return &TransitionError{From: string(from), To: string(to)}
}

var userTransitions = map[enums.ApprovalStatus][]enums.ApprovalStatus{
	enums.ApprovalStatusPending:  {enums.ApprovalStatusApproved, enums.ApprovalStatusRejected},
	enums.ApprovalStatusApproved: {enums.ApprovalStatusSuspended},
}

// UserTransition validates an account status change. There is no way back
// from SUSPENDED or REJECTED.
func UserTransition(from, to enums.ApprovalStatus) error {
	for _, allowed := range userTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{From: string(from), To: string(to)}
}

// UserTransitionSources lists the statuses an account may leave to reach to.
func UserTransitionSources(to enums.ApprovalStatus) []enums.ApprovalStatus {
	var out []enums.ApprovalStatus
	for from, targets := range userTransitions {
		for _, t := range targets {
			if t == to {
				out = append(out, from)
			}
		}
	}
	return out
}

// NormalizeUserTypes validates and de-duplicates a requested type set,
// preserving first-seen order.
func NormalizeUserTypes(requested []enums.UserType) ([]enums.UserType, error) {
	seen := make(map[enums.UserType]struct{}, len(requested))
	out := make([]enums.UserType, 0, len(requested))
	for _, t := range requested {
		if !t.Valid() {
			return nil, NewValidationError("userTypes", "contains an unknown user type")
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// MergeUserTypes returns the set union of held and requested. Held order is
// kept and new types are appended once each.
func MergeUserTypes(held, requested []enums.UserType) []enums.UserType {
	seen := make(map[enums.UserType]struct{}, len(held)+len(requested))
	out := make([]enums.UserType, 0, len(held)+len(requested))
	for _, list := range [][]enums.UserType{held, requested} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// CheckAccessRequest validates a request for additional user types against
// the types already held and returns the normalized set.
func CheckAccessRequest(held, requested []enums.UserType) ([]enums.UserType, error) {
	if len(requested) == 0 {
		return nil, ErrEmptyRequest
	}
	normalized, err := NormalizeUserTypes(requested)
	if err != nil {
		return nil, err
	}
	if subsetOf(normalized, held) {
		return nil, ErrAlreadyGranted
	}
	return normalized, nil
}

func subsetOf(sub, set []enums.UserType) bool {
	for _, t := range sub {
		found := false
		for _, s := range set {
			if s == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
