package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"
	CodeNotConfigured    Code = "NOT_CONFIGURED"

	// Entity and transport errors surfaced by entity managers
	CodeNotFound          Code = "NOT_FOUND"
	CodeConnection        Code = "CONNECTION_ERROR"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodePlatformAPIError  Code = "PLATFORM_API_ERROR"
	CodePlatformAuthError Code = "PLATFORM_AUTH_ERROR"
	CodeTimeout           Code = "TIMEOUT_ERROR"

	// Reconciliation errors
	CodeInvalidConflict     Code = "INVALID_CONFLICT"
	CodePartialSync         Code = "PARTIAL_SYNC"
	CodeSyncFailed          Code = "SYNC_FAILED"
	CodeRollbackNotPossible Code = "ROLLBACK_NOT_POSSIBLE"
	CodeAuditStore          Code = "AUDIT_STORE_ERROR"
)

func (c Code) String() string {
	return string(c)
}
