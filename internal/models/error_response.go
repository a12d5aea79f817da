package models

// ErrorResponse carries an HTTP status alongside a user-attributable
// message, so the service layer can reject without importing fiber.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
}

func (e *ErrorResponse) Error() string {
	return e.Message
}
