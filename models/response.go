package models

// Response is the success envelope.
type Response struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Stack      []string `json:"stack,omitempty"`
}

// NewResponse builds a success envelope.
func NewResponse(status int, data interface{}, message string) Response {
	if data == nil {
		data = struct{}{}
	}
	return Response{Success: status < 400, StatusCode: status, Data: data, Message: message}
}
