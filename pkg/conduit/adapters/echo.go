package adapters

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/conduit/pkg/conduit"
)

// EchoAdapter implements conduit.WebServerInterface for Echo v4
type EchoAdapter struct {
	engine *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	return &EchoAdapter{engine: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with a default Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	return &EchoAdapter{engine: echo.New()}
}

// echoPath converts a parsed route pattern to Echo path syntax
func echoPath(pattern conduit.RoutePattern) string {
	path := ""
	for _, seg := range pattern.Segments() {
		switch seg.Type {
		case conduit.ParamSegment:
			path += "/:" + seg.Value
		case conduit.WildcardSegment:
			path += "/*"
		default:
			path += "/" + seg.Value
		}
	}
	if path == "" {
		return "/"
	}
	return path
}

// RegisterRoute registers a route with the Echo server
func (ea *EchoAdapter) RegisterRoute(method string, pattern conduit.RoutePattern, handler conduit.HandlerFunc, middlewares ...conduit.MiddlewareFunc) {
	echoMiddlewares := make([]echo.MiddlewareFunc, len(middlewares))
	for i, mw := range middlewares {
		echoMiddlewares[i] = ea.convertMiddleware(mw)
	}
	ea.engine.Add(method, echoPath(pattern), convertHandler(handler), echoMiddlewares...)
}

// RegisterGroup creates a new route group
func (ea *EchoAdapter) RegisterGroup(prefix string) conduit.RouteGroup {
	return &EchoGroupAdapter{group: ea.engine.Group(prefix), adapter: ea}
}

// Use adds global middleware
func (ea *EchoAdapter) Use(middleware conduit.MiddlewareFunc) {
	ea.engine.Use(ea.convertMiddleware(middleware))
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	return ea.engine.Start(addr)
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}

// EchoGroupAdapter implements conduit.RouteGroup for Echo groups
type EchoGroupAdapter struct {
	group   *echo.Group
	adapter *EchoAdapter
}

// RegisterRoute registers a route with the group
func (ega *EchoGroupAdapter) RegisterRoute(method string, pattern conduit.RoutePattern, handler conduit.HandlerFunc, middlewares ...conduit.MiddlewareFunc) {
	echoMiddlewares := make([]echo.MiddlewareFunc, len(middlewares))
	for i, mw := range middlewares {
		echoMiddlewares[i] = ega.adapter.convertMiddleware(mw)
	}
	ega.group.Add(method, echoPath(pattern), convertHandler(handler), echoMiddlewares...)
}

// Use adds middleware to the group
func (ega *EchoGroupAdapter) Use(middleware conduit.MiddlewareFunc) {
	ega.group.Use(ega.adapter.convertMiddleware(middleware))
}

// Group creates a sub-group
func (ega *EchoGroupAdapter) Group(prefix string) conduit.RouteGroup {
	return &EchoGroupAdapter{group: ega.group.Group(prefix), adapter: ega.adapter}
}

// convertHandler converts conduit.HandlerFunc to echo.HandlerFunc
func convertHandler(handler conduit.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handler(NewEchoRequestContext(c))
	}
}

// convertMiddleware converts conduit.MiddlewareFunc to echo.MiddlewareFunc
func (ea *EchoAdapter) convertMiddleware(middleware conduit.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			wrapped := middleware(func(rc conduit.RequestContext) error {
				return next(c)
			})
			return wrapped(NewEchoRequestContext(c))
		}
	}
}

// EchoRequestContext implements conduit.RequestContext for Echo
type EchoRequestContext struct {
	context  echo.Context
	response *EchoResponseInterface
}

// NewEchoRequestContext wraps an Echo context for the pipeline
func NewEchoRequestContext(c echo.Context) *EchoRequestContext {
	return &EchoRequestContext{
		context:  c,
		response: &EchoResponseInterface{context: c},
	}
}

// Method returns the HTTP method
func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

// Path returns the request path
func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

// Context returns the request's lifetime context
func (erc *EchoRequestContext) Context() context.Context {
	return erc.context.Request().Context()
}

// Param returns a path parameter by name
func (erc *EchoRequestContext) Param(key string) string {
	return erc.context.Param(key)
}

// ParamNames returns the path parameter names
func (erc *EchoRequestContext) ParamNames() []string {
	return erc.context.ParamNames()
}

// QueryParam returns the first query value for the given key
func (erc *EchoRequestContext) QueryParam(key string) string {
	return erc.context.QueryParam(key)
}

// QueryParams returns all query parameters
func (erc *EchoRequestContext) QueryParams() map[string][]string {
	return erc.context.QueryParams()
}

// Request returns the request interface
func (erc *EchoRequestContext) Request() conduit.RequestInterface {
	return &EchoRequestInterface{request: erc.context.Request()}
}

// Response returns the response interface
func (erc *EchoRequestContext) Response() conduit.ResponseInterface {
	return erc.response
}

// Get retrieves data from the context
func (erc *EchoRequestContext) Get(key string) any {
	return erc.context.Get(key)
}

// Set stores data in the context
func (erc *EchoRequestContext) Set(key string, val any) {
	erc.context.Set(key, val)
}

// EchoRequestInterface implements conduit.RequestInterface for Echo requests
type EchoRequestInterface struct {
	request *http.Request
}

// Header returns a request header value
func (eri *EchoRequestInterface) Header(key string) string {
	return eri.request.Header.Get(key)
}

// Body returns the request body stream
func (eri *EchoRequestInterface) Body() io.Reader {
	return eri.request.Body
}

// ContentLength returns the content length
func (eri *EchoRequestInterface) ContentLength() int64 {
	return eri.request.ContentLength
}

// ContentType returns the content type
func (eri *EchoRequestInterface) ContentType() string {
	return eri.request.Header.Get("Content-Type")
}

// EchoResponseInterface implements conduit.ResponseInterface for Echo
// responses. The status is tracked explicitly so the pipeline can tell
// "already set" apart from Echo's pre-commit default.
type EchoResponseInterface struct {
	context echo.Context
	status  int
}

// Status returns the explicitly set or committed status code, 0 when none
func (eri *EchoResponseInterface) Status() int {
	if eri.context.Response().Committed {
		return eri.context.Response().Status
	}
	return eri.status
}

// SetStatus records the response status code
func (eri *EchoResponseInterface) SetStatus(code int) {
	eri.status = code
	eri.context.Response().Status = code
}

// Header returns a response header value
func (eri *EchoResponseInterface) Header(key string) string {
	return eri.context.Response().Header().Get(key)
}

// SetHeader sets a response header
func (eri *EchoResponseInterface) SetHeader(key, value string) {
	eri.context.Response().Header().Set(key, value)
}

// JSON writes a JSON response
func (eri *EchoResponseInterface) JSON(code int, i any) error {
	return eri.context.JSON(code, i)
}

// String writes a plain text response
func (eri *EchoResponseInterface) String(code int, s string) error {
	return eri.context.String(code, s)
}

// Blob writes a raw response with the given content type
func (eri *EchoResponseInterface) Blob(code int, contentType string, b []byte) error {
	return eri.context.Blob(code, contentType, b)
}

// NoContent writes an empty response with the given status
func (eri *EchoResponseInterface) NoContent(code int) error {
	return eri.context.NoContent(code)
}

// Written reports whether the response has been committed
func (eri *EchoResponseInterface) Written() bool {
	return eri.context.Response().Committed
}
