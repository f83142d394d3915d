package core

// error_messages.go maps technical errors to messages an uploader can act on.
//
// Codes by category:
//
//	DB001-DB006      database connectivity and constraint failures
//	XLS001-XLS003    workbook structure problems found while parsing
//	FILE001-FILE004  upload request problems (missing, empty, too large)
//	UPL001-UPL004    upload processing (busy, cancelled, timed out, not saved)
//	JOB001           job lookup
//	REQ001           malformed query or path parameters
//	RATE001          request throttling
//	ERR000           fallback when nothing matches; check the logs
//
// Patterns are matched case-insensitively with strings.Contains against the
// full error chain text. The first match wins, so specific patterns are
// listed before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Workbook structure
	{
		pattern: "sheet not found",
		msg: UserMessage{
			Message: `The workbook has no sheet named "Main"`,
			Action:  `Rename the sheet holding the job postings to "Main" and upload again`,
			Code:    "XLS001",
		},
	},
	{
		pattern: "unreadable workbook",
		msg: UserMessage{
			Message: "The file is not a readable Excel workbook",
			Action:  "Open the file in Excel, save it as .xlsx and upload again",
			Code:    "XLS002",
		},
	},
	{
		pattern: "read sheet",
		msg: UserMessage{
			Message: `The "Main" sheet could not be read completely`,
			Action:  "Re-save the workbook in Excel and try again",
			Code:    "XLS003",
		},
	},

	// Request problems
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the postings across smaller workbooks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  `Attach the workbook in the "file" form field`,
			Code:    "FILE002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a workbook containing job postings",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "File must be an Excel file (.xlsx)",
			Action:  "Save the spreadsheet as .xlsx and upload again",
			Code:    "FILE004",
		},
	},

	// Upload processing
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "Too many uploads are in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The upload took too long",
			Action:  "Try a smaller workbook or try again later",
			Code:    "UPL003",
		},
	},
	{
		pattern: "commit upload",
		msg: UserMessage{
			Message: "The upload could not be saved",
			Action:  "No postings were added. Please try again",
			Code:    "UPL004",
		},
	},

	// Database
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "too many clients",
		msg: UserMessage{
			Message: "The database is at capacity",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A posting with the same employer, title and city already exists",
			Action:  "Remove the duplicate row and upload again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},

	{
		pattern: "job not found",
		msg: UserMessage{
			Message: "Job not found",
			Action:  "Check the job id or refresh the listing",
			Code:    "JOB001",
		},
	},

	{
		pattern: "invalid query parameter",
		msg: UserMessage{
			Message: "Invalid request parameters",
			Action:  "Check the page, page_size and job id values",
			Code:    "REQ001",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Returns
// the zero UserMessage for nil and the ERR000 fallback when nothing matches.
//
//	msg := MapError(fmt.Errorf("parse: %w", ingest.ErrSheetNotFound))
//	// msg.Code == "XLS001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matched a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
