// Package errors provides the structured error type shared by the MOAD tooling.
// Each error carries a string code, optional key/value context for log output
// and its cause. IsFatal tells the CLI which codes stop a run up front.
package errors

// ErrorCode classifies a failure. Codes are strings so they read well in logs.
type ErrorCode string

const (
	CodeNotFound      ErrorCode = "NOT_FOUND"             // missing file, folder, group or object
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"         // bad flag or argument value
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION" // unreadable or inconsistent config file

	CodeNetwork ErrorCode = "NETWORK_ERROR" // remote storage request failed
	CodeStorage ErrorCode = "STORAGE_ERROR" // local filesystem operation failed

	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED" // external process could not run
	CodeAborted         ErrorCode = "ABORTED"          // operator declined or interrupted a prompt

	CodeInternal ErrorCode = "INTERNAL_ERROR"
	CodeUnknown  ErrorCode = "UNKNOWN"
)

// fatalCodes lists the codes that stop a run before any transfer starts.
var fatalCodes = map[ErrorCode]bool{
	CodeInvalidConfig: true,
	CodeInvalidInput:  true,
	CodeAborted:       true,
}
