// Package response defines the JSON error envelope shared by every endpoint:
//
//	{"error": {"message": "..."}}
package response

// Error represents the body of an error response.
type Error struct {
	Message string `json:"message"`
}

// ErrorResponse wraps an Error under the "error" key.
type ErrorResponse struct {
	Error Error `json:"error"`
}

// Predefined error responses for common scenarios.
var (
	UnauthorizedResponse     = NewError("Unauthorized")
	NotFoundResponse         = NewError("Resource not found.")
	MethodNotAllowedResponse = NewError("Method not allowed.")
	ServerErrorResponse      = NewError("An internal server error occurred.")
)

// NewError returns an ErrorResponse carrying msg.
func NewError(msg string) ErrorResponse {
	return ErrorResponse{Error: Error{Message: msg}}
}
