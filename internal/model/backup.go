package model

import "time"

const (
	BackupStatusPending   = "pending"
	BackupStatusUploading = "uploading"
	BackupStatusCompleted = "completed"
	BackupStatusFailed    = "failed"
)

type Backup struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	S3Key     string    `json:"s3_key"`
	Status    string    `json:"status"`
	SizeBytes int64     `json:"size_bytes"`
	Error     string    `json:"error"`
	CreatedAt time.Time `json:"created_at"`
}
