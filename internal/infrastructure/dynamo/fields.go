package dynamo

// DynamoDB attribute and index names shared by the repos.
const (
	fieldName         = "name"
	fieldEmail        = "email"
	fieldPosition     = "position"
	fieldPhone        = "phone"
	fieldLocation     = "location"
	fieldStatus       = "status"
	fieldResumeKey    = "resume_key"
	fieldUpdatedAt    = "updated_at"
	fieldRead         = "read"
	fieldReadAt       = "read_at"
	fieldUnreadUserID = "unread_user_id"
	fieldToken        = "token"
	fieldUserID       = "user_id"
	fieldEnable       = "enable"

	indexEmail              = "email-index"
	indexCandidateCreatedAt = "candidate_id-created_at-index"
	indexUserCreatedAt      = "user_id-created_at-index"
	indexUnreadCreatedAt    = "unread_user_id-created_at-index"
	indexUserID             = "user_id-index"
	indexDeviceUUID         = "device_uuid-index"
)
