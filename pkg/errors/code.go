package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 12000-12999: Problem catalog errors
// 13000-13999: Submission & Judge errors
// 14000-14999: Client orchestration errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Cache errors (10200-10299)
	CacheError ErrorCode = 10200

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	RequiredFieldEmpty ErrorCode = 10303

	// ========== Problem Catalog Errors (12000-12999) ==========

	ProblemNotFound ErrorCode = 12000
	ProblemInvalid  ErrorCode = 12001

	// ========== Submission & Judge Errors (13000-13999) ==========

	// Submission (13000-13099)
	SubmissionNotFound   ErrorCode = 13000
	CodeTooLarge         ErrorCode = 13002
	LanguageNotSupported ErrorCode = 13003
	SubmitTooFrequently  ErrorCode = 13004

	// Judge (13100-13199)
	JudgeQueueFull ErrorCode = 13100

	// ========== Client Orchestration Errors (14000-14999) ==========

	// Submit path (14000-14099)
	NoProblemSelected    ErrorCode = 14000
	SubmitFailed         ErrorCode = 14001
	SubmissionSuperseded ErrorCode = 14002
	SubmissionCancelled  ErrorCode = 14003
	OrchestratorClosed   ErrorCode = 14004

	// Result path (14100-14199)
	PollFailed      ErrorCode = 14100
	PollTimeout     ErrorCode = 14101
	GatewayProtocol ErrorCode = 14102
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Cache
	CacheError: "Cache operation failed",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	RequiredFieldEmpty: "Required field is empty",

	// Problem
	ProblemNotFound: "problem not found",
	ProblemInvalid:  "Problem definition is invalid",

	// Submission
	SubmissionNotFound:   "Submission not found",
	CodeTooLarge:         "Source code is too large",
	LanguageNotSupported: "Language not supported",
	SubmitTooFrequently:  "Submitting too frequently",

	// Judge
	JudgeQueueFull: "Judge queue is full",

	// Client orchestration
	NoProblemSelected:    "Select a problem first",
	SubmitFailed:         "Submit failed",
	SubmissionSuperseded: "Submission superseded by a newer one",
	SubmissionCancelled:  "Submission cancelled",
	OrchestratorClosed:   "Orchestrator is closed",
	PollFailed:           "Could not retrieve result",
	PollTimeout:          "Gave up waiting for result",
	GatewayProtocol:      "Unexpected response from judge gateway",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == ProblemNotFound, c == SubmissionNotFound:
		return 404
	case c == TooManyRequests, c == SubmitTooFrequently:
		return 429
	case c == ServiceUnavailable, c == JudgeQueueFull:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == LanguageNotSupported, c == CodeTooLarge:
		return 400
	default:
		return 500
	}
}
