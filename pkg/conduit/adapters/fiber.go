package adapters

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/toyz/conduit/pkg/conduit"
)

// FiberAdapter wraps a Fiber app to implement conduit.WebServerInterface
type FiberAdapter struct {
	app *fiber.App
}

// NewFiberAdapter creates a new Fiber adapter instance
func NewFiberAdapter() *FiberAdapter {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a new Fiber adapter with default middleware
func NewDefaultFiberAdapter() *FiberAdapter {
	adapter := NewFiberAdapter()

	adapter.app.Use(logger.New())
	adapter.app.Use(recover.New())

	return adapter
}

// fiberPath converts a parsed route pattern to Fiber path syntax
func fiberPath(pattern conduit.RoutePattern) string {
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

// RegisterRoute registers a route with the Fiber app
func (fa *FiberAdapter) RegisterRoute(method string, pattern conduit.RoutePattern, handler conduit.HandlerFunc, middlewares ...conduit.MiddlewareFunc) {
	registerFiberRoute(fa.app, method, fiberPath(pattern), handler, middlewares)
}

// RegisterGroup creates a new route group with the given prefix
func (fa *FiberAdapter) RegisterGroup(prefix string) conduit.RouteGroup {
	return &FiberRouteGroup{group: fa.app.Group(prefix), adapter: fa}
}

// Use adds middleware to the Fiber app
func (fa *FiberAdapter) Use(middleware conduit.MiddlewareFunc) {
	fa.app.Use(convertFiberMiddleware(middleware))
}

// Start starts the Fiber server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.Shutdown()
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}

// FiberRouteGroup wraps a Fiber route group to implement conduit.RouteGroup
type FiberRouteGroup struct {
	group   fiber.Router
	adapter *FiberAdapter
}

// RegisterRoute registers a route with this group
func (frg *FiberRouteGroup) RegisterRoute(method string, pattern conduit.RoutePattern, handler conduit.HandlerFunc, middlewares ...conduit.MiddlewareFunc) {
	registerFiberRoute(frg.group, method, fiberPath(pattern), handler, middlewares)
}

// Use adds middleware to the group
func (frg *FiberRouteGroup) Use(middleware conduit.MiddlewareFunc) {
	frg.group.Use(convertFiberMiddleware(middleware))
}

// Group creates a sub-group
func (frg *FiberRouteGroup) Group(prefix string) conduit.RouteGroup {
	return &FiberRouteGroup{group: frg.group.Group(prefix), adapter: frg.adapter}
}

func registerFiberRoute(router fiber.Router, method, path string, handler conduit.HandlerFunc, middlewares []conduit.MiddlewareFunc) {
	var handlers []fiber.Handler
	for _, mw := range middlewares {
		handlers = append(handlers, convertFiberMiddleware(mw))
	}
	handlers = append(handlers, convertFiberHandler(handler))

	switch strings.ToUpper(method) {
	case "GET":
		router.Get(path, handlers...)
	case "POST":
		router.Post(path, handlers...)
	case "PUT":
		router.Put(path, handlers...)
	case "DELETE":
		router.Delete(path, handlers...)
	case "PATCH":
		router.Patch(path, handlers...)
	case "OPTIONS":
		router.Options(path, handlers...)
	case "HEAD":
		router.Head(path, handlers...)
	}
}

// convertFiberHandler converts conduit.HandlerFunc to fiber.Handler
func convertFiberHandler(handler conduit.HandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return handler(NewFiberRequestContext(c))
	}
}

// convertFiberMiddleware converts conduit.MiddlewareFunc to fiber.Handler
func convertFiberMiddleware(middleware conduit.MiddlewareFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		wrapped := middleware(func(rc conduit.RequestContext) error {
			return c.Next()
		})
		return wrapped(NewFiberRequestContext(c))
	}
}

// FiberRequestContext implements conduit.RequestContext for Fiber
type FiberRequestContext struct {
	context  *fiber.Ctx
	response *FiberResponseInterface
}

// NewFiberRequestContext wraps a Fiber context for the pipeline
func NewFiberRequestContext(c *fiber.Ctx) *FiberRequestContext {
	return &FiberRequestContext{
		context:  c,
		response: &FiberResponseInterface{context: c},
	}
}

// Method returns the HTTP method
func (frc *FiberRequestContext) Method() string {
	return frc.context.Method()
}

// Path returns the request path
func (frc *FiberRequestContext) Path() string {
	return frc.context.Path()
}

// Context returns the request's lifetime context
func (frc *FiberRequestContext) Context() context.Context {
	return frc.context.UserContext()
}

// Param returns a path parameter by name
func (frc *FiberRequestContext) Param(key string) string {
	return frc.context.Params(key)
}

// ParamNames returns the path parameter names
func (frc *FiberRequestContext) ParamNames() []string {
	route := frc.context.Route()
	if route == nil {
		return nil
	}
	return route.Params
}

// QueryParam returns the first query value for the given key
func (frc *FiberRequestContext) QueryParam(key string) string {
	return frc.context.Query(key)
}

// QueryParams returns all query parameters
func (frc *FiberRequestContext) QueryParams() map[string][]string {
	params := make(map[string][]string)
	frc.context.Context().QueryArgs().VisitAll(func(key, value []byte) {
		params[string(key)] = append(params[string(key)], string(value))
	})
	return params
}

// Request returns the request interface
func (frc *FiberRequestContext) Request() conduit.RequestInterface {
	return &FiberRequestInterface{context: frc.context}
}

// Response returns the response interface
func (frc *FiberRequestContext) Response() conduit.ResponseInterface {
	return frc.response
}

// Get retrieves data from the context
func (frc *FiberRequestContext) Get(key string) any {
	return frc.context.Locals(key)
}

// Set stores data in the context
func (frc *FiberRequestContext) Set(key string, val any) {
	frc.context.Locals(key, val)
}

// FiberRequestInterface implements conduit.RequestInterface for Fiber requests
type FiberRequestInterface struct {
	context *fiber.Ctx
}

// Header returns a request header value
func (fri *FiberRequestInterface) Header(key string) string {
	return fri.context.Get(key)
}

// Body returns the request body stream
func (fri *FiberRequestInterface) Body() io.Reader {
	return bytes.NewReader(fri.context.Body())
}

// ContentLength returns the content length
func (fri *FiberRequestInterface) ContentLength() int64 {
	return int64(fri.context.Context().Request.Header.ContentLength())
}

// ContentType returns the content type
func (fri *FiberRequestInterface) ContentType() string {
	return fri.context.Get(fiber.HeaderContentType)
}

// FiberResponseInterface implements conduit.ResponseInterface for Fiber
type FiberResponseInterface struct {
	context *fiber.Ctx
	status  int
	written bool
}

// Status returns the explicitly set status code, 0 when none
func (fri *FiberResponseInterface) Status() int {
	if fri.written {
		return fri.context.Response().StatusCode()
	}
	return fri.status
}

// SetStatus records the response status code
func (fri *FiberResponseInterface) SetStatus(code int) {
	fri.status = code
	fri.context.Status(code)
}

// Header returns a response header value
func (fri *FiberResponseInterface) Header(key string) string {
	return string(fri.context.Response().Header.Peek(key))
}

// SetHeader sets a response header
func (fri *FiberResponseInterface) SetHeader(key, value string) {
	fri.context.Set(key, value)
}

// JSON writes a JSON response
func (fri *FiberResponseInterface) JSON(code int, i any) error {
	fri.written = true
	return fri.context.Status(code).JSON(i)
}

// String writes a plain text response
func (fri *FiberResponseInterface) String(code int, s string) error {
	fri.written = true
	return fri.context.Status(code).SendString(s)
}

// Blob writes a raw response with the given content type
func (fri *FiberResponseInterface) Blob(code int, contentType string, b []byte) error {
	fri.written = true
	fri.context.Set(fiber.HeaderContentType, contentType)
	return fri.context.Status(code).Send(b)
}

// NoContent writes an empty response with the given status
func (fri *FiberResponseInterface) NoContent(code int) error {
	fri.written = true
	return fri.context.Status(code).Send(nil)
}

// Written reports whether the response has been written
func (fri *FiberResponseInterface) Written() bool {
	return fri.written
}
