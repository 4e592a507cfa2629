package domain

import "time"

// Stage names a step of a pipeline run.
type Stage string

const (
	StageIssued     Stage = "Issued"
	StageUploaded   Stage = "Uploaded"
	StageAnalyzing  Stage = "Analyzing"
	StageGenerating Stage = "Generating"
	StageSaving     Stage = "Saving"
	StageSaved      Stage = "Saved"
)

// Run ledger statuses.
const (
	RunStatusPending = "PENDING"
	RunStatusDone    = "DONE"
	RunStatusFailed  = "FAILED"
)

// RunRequest identifies the upload a run processes and who owns the result.
type RunRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	UploadID string `json:"upload_id" validate:"required,alphanum,max=64"`
}

// Run is the ledger entry guarding at-most-one pipeline run per upload.
// PK: upload_id. ExpiresAt is a DynamoDB TTL (Unix seconds), cleared once the run is done.
type Run struct {
	UploadID  string    `json:"upload_id" dynamodbav:"upload_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Status    string    `json:"status" dynamodbav:"status"`
	Stage     Stage     `json:"stage,omitempty" dynamodbav:"stage,omitempty"`
	Error     string    `json:"error,omitempty" dynamodbav:"error,omitempty"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
	ExpiresAt int64     `json:"-" dynamodbav:"expires_at,omitempty"`
}
