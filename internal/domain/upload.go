package domain

import "time"

// UploadCredential authorizes exactly one PUT of a selfie to object storage.
// It is never persisted; expiry is enforced by the storage layer.
type UploadCredential struct {
	UploadID   string            `json:"upload_id"`
	StorageKey string            `json:"storage_key"`
	UploadURL  string            `json:"upload_url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers,omitempty"`
	ExpiresAt  time.Time         `json:"expires_at"`
}
