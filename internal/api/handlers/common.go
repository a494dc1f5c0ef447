package handlers

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"alert 42 not found"`
}

func errorBody(message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: message}
}
