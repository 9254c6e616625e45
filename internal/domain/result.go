package domain

import "time"

// OperationType identifies an orchestrator operation.
type OperationType string

const (
	// OperationCreate is the creation of a new backup.
	OperationCreate OperationType = "create"
	// OperationRestore is the restoration of an existing backup.
	OperationRestore OperationType = "restore"
	// OperationDelete is the deletion of an existing backup.
	OperationDelete OperationType = "delete"
)

// String returns the string representation of the operation type.
func (o OperationType) String() string {
	return string(o)
}

// OperationResult records the outcome of one orchestrator operation, for
// metrics and notifications.
type OperationResult struct {
	Operation    OperationType `json:"operation"`
	BackupName   string        `json:"backup_name"`
	Success      bool          `json:"success"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	ArchiveBytes int64         `json:"archive_bytes"`
	Steps        int           `json:"steps"`
	Error        string        `json:"error,omitempty"`
}

// NewOperationResult creates a result with the start time set to now.
func NewOperationResult(op OperationType, name string) *OperationResult {
	return &OperationResult{
		Operation:  op,
		BackupName: name,
		StartTime:  time.Now(),
	}
}

// Complete marks the result as finished. A nil error means success.
func (r *OperationResult) Complete(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = err == nil
	if err != nil {
		r.Error = err.Error()
	}
}
