package conduit

import (
	"context"
	"io"
)

// WebServerInterface defines the contract for web server implementations
type WebServerInterface interface {
	// Route registration
	RegisterRoute(method string, pattern RoutePattern, handler HandlerFunc, middlewares ...MiddlewareFunc)
	RegisterGroup(prefix string) RouteGroup

	// Global middleware
	Use(middleware MiddlewareFunc)

	// Server lifecycle
	Start(addr string) error
	Stop(ctx context.Context) error

	// Server information
	Name() string
}

// RouteGroup represents a group of routes with a common prefix
type RouteGroup interface {
	RegisterRoute(method string, pattern RoutePattern, handler HandlerFunc, middlewares ...MiddlewareFunc)
	Use(middleware MiddlewareFunc)
	Group(prefix string) RouteGroup
}

// RequestContext provides a framework-agnostic view of one HTTP request.
// The pipeline only reads its lookup primitives and writes through its
// Response; it never constructs or owns one.
type RequestContext interface {
	// Request data
	Method() string
	Path() string
	Context() context.Context

	// Path parameters
	Param(key string) string
	ParamNames() []string

	// Query parameters (repeated keys preserved)
	QueryParam(key string) string
	QueryParams() map[string][]string

	// Request and response access
	Request() RequestInterface
	Response() ResponseInterface

	// Context data
	Get(key string) any
	Set(key string, val any)
}

// RequestInterface provides access to the underlying request
type RequestInterface interface {
	Header(key string) string
	Body() io.Reader
	ContentLength() int64
	ContentType() string
}

// ResponseInterface provides response writing capabilities
type ResponseInterface interface {
	// Status
	Status() int
	SetStatus(code int)

	// Headers
	Header(key string) string
	SetHeader(key, value string)

	// Content
	JSON(code int, i any) error
	String(code int, s string) error
	Blob(code int, contentType string, b []byte) error
	NoContent(code int) error

	// Response data
	Written() bool
}

// HandlerFunc defines the signature for HTTP handlers
type HandlerFunc func(RequestContext) error

// MiddlewareFunc defines the signature for middleware
type MiddlewareFunc func(HandlerFunc) HandlerFunc
