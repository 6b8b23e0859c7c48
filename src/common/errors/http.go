package errors

// Response is the error body returned by the HTTP API
type Response struct {
	// Error is "domain.code"
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ToResponse converts e to its HTTP body
func (e *Error) ToResponse() Response {
	return Response{
		Error:   string(e.Domain) + "." + string(e.Code),
		Message: e.Message,
	}
}

// NewResponse builds a response from any error. Errors that are not *Error
// (or do not wrap one) become a generic internal error so that driver
// messages never reach clients.
func NewResponse(err error) Response {
	var e *Error
	if As(err, &e) {
		return e.ToResponse()
	}
	return Response{
		Error:   string(DomainInternal) + "." + string(CodeInternal),
		Message: "Internal server error",
	}
}
