package conduit

import "net/http"

// Result is a structured result object: a handler return value that takes
// over response writing entirely, setting its own status, headers, and body.
type Result interface {
	WriteResponse(rc RequestContext) error
}

// Response represents an HTTP response with a custom status code and body.
// Return it (or a pointer to it) from a handler to control the status code;
// the body is JSON-encoded.
//
// Example usage:
//
//	func createUser(user User) (*conduit.Response, error) {
//		// ... create user logic ...
//		return conduit.Created(createdUser), nil
//	}
type Response struct {
	// StatusCode is the HTTP status code to return (e.g., 200, 201, 404, 500)
	StatusCode int `json:"-"`

	// Body is the response body that will be JSON-encoded and sent to the client
	Body any `json:"body,omitempty"`
}

// WriteResponse implements Result
func (r *Response) WriteResponse(rc RequestContext) error {
	if r.Body == nil {
		return rc.Response().NoContent(r.StatusCode)
	}
	return rc.Response().JSON(r.StatusCode, r.Body)
}

// NewResponse creates a new Response with the specified status code and body
func NewResponse(statusCode int, body any) *Response {
	return &Response{
		StatusCode: statusCode,
		Body:       body,
	}
}

// OK creates a 200 OK response with the given body
func OK(body any) *Response {
	return NewResponse(http.StatusOK, body)
}

// Created creates a 201 Created response with the given body
func Created(body any) *Response {
	return NewResponse(http.StatusCreated, body)
}

// NoContent creates a 204 No Content response
func NoContent() *Response {
	return NewResponse(http.StatusNoContent, nil)
}

// BadRequest creates a 400 Bad Request response with the given error message
func BadRequest(message string) *Response {
	return NewResponse(http.StatusBadRequest, map[string]string{"error": message})
}

// NotFound creates a 404 Not Found response with the given error message
func NotFound(message string) *Response {
	return NewResponse(http.StatusNotFound, map[string]string{"error": message})
}

// InternalServerError creates a 500 Internal Server Error response with the given error message
func InternalServerError(message string) *Response {
	return NewResponse(http.StatusInternalServerError, map[string]string{"error": message})
}
