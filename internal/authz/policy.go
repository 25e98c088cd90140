package authz

// Action is something a caller can do with a project or its groups.
type Action int

const (
	// ActionRead reads a project, its member lists and its groups.
	ActionRead Action = iota
	// ActionWriteGroup creates or updates a curl group.
	ActionWriteGroup
	// ActionDeleteGroup deletes a curl group.
	ActionDeleteGroup
	// ActionAdmin updates or deletes a project or edits its membership.
	ActionAdmin
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionWriteGroup:
		return "write group"
	case ActionDeleteGroup:
		return "delete group"
	case ActionAdmin:
		return "administer project"
	default:
		return "unknown action"
	}
}

// needsSession reports whether the action always requires authentication.
func (a Action) needsSession() bool {
	return a != ActionRead
}

// policy lists the decisions allowed for each action. PublicReader only
// arises for public projects.
var policy = map[Action]map[Decision]bool{
	ActionRead: {
		Admin:        true,
		Collaborator: true,
		PublicReader: true,
	},
	ActionWriteGroup: {
		Admin:        true,
		Collaborator: true,
		PublicReader: true,
	},
	ActionDeleteGroup: {
		Admin:        true,
		Collaborator: true,
	},
	ActionAdmin: {
		Admin: true,
	},
}
