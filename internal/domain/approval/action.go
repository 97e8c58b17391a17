package approval

import "github.com/cmlabs-hris/hris-console-go/internal/domain/user"

type Action string

const (
	ActionApproveLevel1 Action = "approve_level1"
	ActionApproveFinal  Action = "approve_final"
	ActionReject        Action = "reject"
)

// actionOrder is the canonical order actions are offered in.
var actionOrder = []Action{ActionApproveLevel1, ActionApproveFinal, ActionReject}

// ActionSet is an ordered set of offerable actions. It always encodes as a
// JSON array, never null.
type ActionSet []Action

func newActionSet(allowed map[Action]bool) ActionSet {
	set := ActionSet{}
	for _, a := range actionOrder {
		if allowed[a] {
			set = append(set, a)
		}
	}
	return set
}

// Has reports whether a is in the set
func (s ActionSet) Has(a Action) bool {
	for _, x := range s {
		if x == a {
			return true
		}
	}
	return false
}

func (s ActionSet) IsEmpty() bool {
	return len(s) == 0
}

// StatusActions returns the actions the status alone allows.
func StatusActions(status Status) ActionSet {
	switch status {
	case StatusPending:
		return newActionSet(map[Action]bool{ActionApproveLevel1: true, ActionReject: true})
	case StatusLevel1Approved:
		return newActionSet(map[Action]bool{ActionApproveFinal: true, ActionReject: true})
	default:
		return ActionSet{}
	}
}

// Actions returns the actions offerable to a caller with the given capability.
// Division approvers only act on the first stage; organization approvers may
// take any action the status allows.
func Actions(status Status, capability user.ApprovalCapability) ActionSet {
	allowed := StatusActions(status)

	switch capability {
	case user.CapabilityOrganization:
		return allowed
	case user.CapabilityDivision:
		if status != StatusPending {
			return ActionSet{}
		}
		return allowed
	default:
		return ActionSet{}
	}
}

// CapabilityPermits reports whether the capability may ever take the action.
// Status eligibility is enforced by the backend.
func CapabilityPermits(capability user.ApprovalCapability, action Action) bool {
	switch capability {
	case user.CapabilityOrganization:
		return action == ActionApproveLevel1 || action == ActionApproveFinal || action == ActionReject
	case user.CapabilityDivision:
		return action == ActionApproveLevel1 || action == ActionReject
	default:
		return false
	}
}
