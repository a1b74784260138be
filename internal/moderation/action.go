package moderation

import "fmt"

// ActionKind identifies one of the four admin actions.
type ActionKind string

const (
	ActionApprove ActionKind = "approve"
	ActionReject  ActionKind = "reject"
	ActionTrust   ActionKind = "trust"
	ActionBlock   ActionKind = "block"
)

// Action is an admin action parsed once at the boundary. Approve and
// Reject target a comment id, Trust and Block target a user id.
type Action struct {
	Kind     ActionKind
	TargetID uint
}

// TargetsComment reports whether the action targets a comment.
func (a Action) TargetsComment() bool {
	return a.Kind == ActionApprove || a.Kind == ActionReject
}

// ParseCommentAction parses an approve/reject action on a comment.
func ParseCommentAction(kind string, commentID uint) (Action, error) {
	switch ActionKind(kind) {
	case ActionApprove, ActionReject:
		return Action{Kind: ActionKind(kind), TargetID: commentID}, nil
	default:
		return Action{}, fmt.Errorf("%w: %q is not a comment action", ErrUnknownAction, kind)
	}
}

// ParseUserAction parses a trust/block action on a user.
func ParseUserAction(kind string, userID uint) (Action, error) {
	switch ActionKind(kind) {
	case ActionTrust, ActionBlock:
		return Action{Kind: ActionKind(kind), TargetID: userID}, nil
	default:
		return Action{}, fmt.Errorf("%w: %q is not a user action", ErrUnknownAction, kind)
	}
}
