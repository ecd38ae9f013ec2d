package domain

type RollbackOp string

const (
	RollbackOpDelete RollbackOp = "delete"
	RollbackOpUpdate RollbackOp = "update"
)

// RollbackAction is the inverse of one successful audit entry.
type RollbackAction struct {
	Op         RollbackOp `json:"op"`
	Target     System     `json:"target"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	EntityName string     `json:"entity_name"`
	// State is the payload restored by an update; nil for deletes.
	State Entity `json:"state,omitempty"`
}

type RollbackPreview struct {
	SyncID      string           `json:"sync_id"`
	Actions     []RollbackAction `json:"actions"`
	Warnings    []string         `json:"warnings"`
	CanRollback bool             `json:"can_rollback"`
}

type RollbackResult struct {
	SyncID     string   `json:"sync_id"`
	RolledBack int      `json:"rolled_back"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
}
