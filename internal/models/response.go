package models

// APIResponse is the envelope every endpoint answers with. Data is set on
// success, Error on failure, and Errors only when a form failed
// validation (keyed by JSON field name).
type APIResponse struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func NewSuccessResponse(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func NewErrorResponse(message string) APIResponse {
	return APIResponse{Error: message}
}

func NewValidationErrorResponse(fields map[string]string) APIResponse {
	return APIResponse{Error: "Validation failed", Errors: fields}
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

type PhotoResponse struct {
	ProfilePhoto string `json:"profilePhoto"`
}
