package config

// Container labels. Labels are the sole discovery key for workspaces and
// sidecars; nothing else indexes them.
const (
	// LabelThreadID links a container to its logical thread.
	LabelThreadID = "nestbox.thread_id"

	// LabelRole distinguishes workspace containers from their sidecars.
	LabelRole = "nestbox.role"

	// LabelParentCID ties a sidecar to the workspace container it serves.
	LabelParentCID = "nestbox.parent_cid"

	// LabelPlatform records the platform a workspace was created with; it
	// is authoritative for reuse decisions.
	LabelPlatform = "nestbox.platform"
)

// Label role values.
const (
	RoleWorkspace = "workspace"
	RoleDinD      = "dind"
)

// ThreadLabels returns the base label set for a thread.
func ThreadLabels(threadID string) map[string]string {
	return map[string]string{
		LabelThreadID: threadID,
	}
}
