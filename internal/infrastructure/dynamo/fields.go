package dynamo

// DynamoDB attribute names used in key and update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID       = "user_id"
	fieldEmail        = "email"
	fieldPasswordHash = "password_hash"
	fieldTokenVersion = "token_version"
	fieldUpdatedAt    = "updated_at"

	fieldKind      = "kind"
	fieldPayload   = "payload"
	fieldExpiresAt = "expires_at"
)

const emailIndex = "email-index"
