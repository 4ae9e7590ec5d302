package errors

import (
	"fmt"
	"net/http"
)

// Code binds a business error code to its HTTP status and public message
type Code struct {
	Code    int
	Status  int
	Message string
}

const (
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthInvalidToken = 2006
	ErrAuthTokenExpired = 2007
	ErrAuthMissingToken = 2010

	// Search errors (6000-6099)
	ErrSearchMissingField           = 6000
	ErrSearchInvalidIdentifier      = 6001
	ErrSearchInsufficientPrivileges = 6002
	ErrSearchUnknownPreset          = 6003
	ErrSearchBackend                = 6004
	ErrSearchUnsupportedBackend     = 6005
	ErrSearchHistory                = 6006
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	ErrAuthInvalidToken: {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	ErrAuthTokenExpired: {ErrAuthTokenExpired, http.StatusUnauthorized, "Token expired"},
	ErrAuthMissingToken: {ErrAuthMissingToken, http.StatusUnauthorized, "Missing authorization header"},

	ErrSearchMissingField:           {ErrSearchMissingField, http.StatusBadRequest, "Missing required field"},
	ErrSearchInvalidIdentifier:      {ErrSearchInvalidIdentifier, http.StatusBadRequest, "Invalid identifier"},
	ErrSearchInsufficientPrivileges: {ErrSearchInsufficientPrivileges, http.StatusForbidden, "Insufficient privileges"},
	ErrSearchUnknownPreset:          {ErrSearchUnknownPreset, http.StatusNotFound, "Unknown search preset"},
	ErrSearchBackend:                {ErrSearchBackend, http.StatusInternalServerError, "Search failed"},
	ErrSearchUnsupportedBackend:     {ErrSearchUnsupportedBackend, http.StatusInternalServerError, "Search failed"},
	ErrSearchHistory:                {ErrSearchHistory, http.StatusInternalServerError, "Search history unavailable"},
}

// GetCode returns the Code for a given error code, defaulting to internal error
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError reports whether the code maps to a 4xx status
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
