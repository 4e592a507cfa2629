package dynamo

// DynamoDB attribute and index names shared by the repos and Bootstrap.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID    = "user_id"
	fieldUploadID  = "upload_id"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
	fieldStatus    = "status"
	fieldStage     = "stage"
	fieldError     = "error"
	fieldExpiresAt = "expires_at"

	indexUserCreatedAt = "user_id-created_at-index"
)
