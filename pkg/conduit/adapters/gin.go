package adapters

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/toyz/conduit/pkg/conduit"
)

// GinAdapter implements conduit.WebServerInterface for the Gin framework
type GinAdapter struct {
	engine *gin.Engine
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a new Gin adapter with a default Gin instance
func NewDefaultGinAdapter() *GinAdapter {
	return &GinAdapter{engine: gin.Default()}
}

// ginPath converts a parsed route pattern to Gin path syntax
func ginPath(pattern conduit.RoutePattern) string {
	path := ""
	for _, seg := range pattern.Segments() {
		switch seg.Type {
		case conduit.ParamSegment:
			path += "/:" + seg.Value
		case conduit.WildcardSegment:
			path += "/*path"
		default:
			path += "/" + seg.Value
		}
	}
	if path == "" {
		return "/"
	}
	return path
}

// RegisterRoute registers a route with the Gin server
func (ga *GinAdapter) RegisterRoute(method string, pattern conduit.RoutePattern, handler conduit.HandlerFunc, middlewares ...conduit.MiddlewareFunc) {
	var handlers []gin.HandlerFunc
	for _, mw := range middlewares {
		handlers = append(handlers, ga.convertMiddleware(mw))
	}
	handlers = append(handlers, convertGinHandler(handler))
	ga.engine.Handle(method, ginPath(pattern), handlers...)
}

// RegisterGroup creates a new route group
func (ga *GinAdapter) RegisterGroup(prefix string) conduit.RouteGroup {
	return &GinRouteGroup{group: ga.engine.Group(prefix), adapter: ga}
}

// Use registers a global middleware with the Gin server
func (ga *GinAdapter) Use(middleware conduit.MiddlewareFunc) {
	ga.engine.Use(ga.convertMiddleware(middleware))
}

// Start starts the Gin server
func (ga *GinAdapter) Start(addr string) error {
	return ga.engine.Run(addr)
}

// Stop stops the Gin server. Gin has no built-in graceful shutdown; wrap the
// engine in an http.Server when shutdown control is needed.
func (ga *GinAdapter) Stop(ctx context.Context) error {
	return nil
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// GinRouteGroup implements conduit.RouteGroup for Gin
type GinRouteGroup struct {
	group   *gin.RouterGroup
	adapter *GinAdapter
}

// RegisterRoute registers a route within the group
func (grg *GinRouteGroup) RegisterRoute(method string, pattern conduit.RoutePattern, handler conduit.HandlerFunc, middlewares ...conduit.MiddlewareFunc) {
	var handlers []gin.HandlerFunc
	for _, mw := range middlewares {
		handlers = append(handlers, grg.adapter.convertMiddleware(mw))
	}
	handlers = append(handlers, convertGinHandler(handler))
	grg.group.Handle(method, ginPath(pattern), handlers...)
}

// Use adds middleware to the group
func (grg *GinRouteGroup) Use(middleware conduit.MiddlewareFunc) {
	grg.group.Use(grg.adapter.convertMiddleware(middleware))
}

// Group creates a sub-group
func (grg *GinRouteGroup) Group(prefix string) conduit.RouteGroup {
	return &GinRouteGroup{group: grg.group.Group(prefix), adapter: grg.adapter}
}

// convertGinHandler converts conduit.HandlerFunc to gin.HandlerFunc
func convertGinHandler(handler conduit.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := handler(NewGinRequestContext(c)); err != nil {
			_ = c.Error(err)
			if !c.Writer.Written() {
				c.AbortWithStatus(500)
			}
		}
	}
}

// convertMiddleware converts conduit.MiddlewareFunc to gin.HandlerFunc
func (ga *GinAdapter) convertMiddleware(middleware conduit.MiddlewareFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		wrapped := middleware(func(rc conduit.RequestContext) error {
			c.Next()
			return nil
		})
		if err := wrapped(NewGinRequestContext(c)); err != nil {
			_ = c.Error(err)
			c.Abort()
		}
	}
}

// GinRequestContext implements conduit.RequestContext for Gin
type GinRequestContext struct {
	context  *gin.Context
	response *GinResponseInterface
}

// NewGinRequestContext wraps a Gin context for the pipeline
func NewGinRequestContext(c *gin.Context) *GinRequestContext {
	return &GinRequestContext{
		context:  c,
		response: &GinResponseInterface{context: c},
	}
}

// Method returns the HTTP method
func (grc *GinRequestContext) Method() string {
	return grc.context.Request.Method
}

// Path returns the request path
func (grc *GinRequestContext) Path() string {
	return grc.context.Request.URL.Path
}

// Context returns the request's lifetime context
func (grc *GinRequestContext) Context() context.Context {
	return grc.context.Request.Context()
}

// Param returns a path parameter by name
func (grc *GinRequestContext) Param(key string) string {
	return grc.context.Param(key)
}

// ParamNames returns the path parameter names
func (grc *GinRequestContext) ParamNames() []string {
	names := make([]string, len(grc.context.Params))
	for i, p := range grc.context.Params {
		names[i] = p.Key
	}
	return names
}

// QueryParam returns the first query value for the given key
func (grc *GinRequestContext) QueryParam(key string) string {
	return grc.context.Query(key)
}

// QueryParams returns all query parameters
func (grc *GinRequestContext) QueryParams() map[string][]string {
	return grc.context.Request.URL.Query()
}

// Request returns the request interface
func (grc *GinRequestContext) Request() conduit.RequestInterface {
	return &GinRequestInterface{context: grc.context}
}

// Response returns the response interface
func (grc *GinRequestContext) Response() conduit.ResponseInterface {
	return grc.response
}

// Get retrieves data from the context
func (grc *GinRequestContext) Get(key string) any {
	value, _ := grc.context.Get(key)
	return value
}

// Set stores data in the context
func (grc *GinRequestContext) Set(key string, val any) {
	grc.context.Set(key, val)
}

// GinRequestInterface implements conduit.RequestInterface for Gin requests
type GinRequestInterface struct {
	context *gin.Context
}

// Header returns a request header value
func (gri *GinRequestInterface) Header(key string) string {
	return gri.context.GetHeader(key)
}

// Body returns the request body stream
func (gri *GinRequestInterface) Body() io.Reader {
	return gri.context.Request.Body
}

// ContentLength returns the content length
func (gri *GinRequestInterface) ContentLength() int64 {
	return gri.context.Request.ContentLength
}

// ContentType returns the content type
func (gri *GinRequestInterface) ContentType() string {
	return gri.context.ContentType()
}

// GinResponseInterface implements conduit.ResponseInterface for Gin
type GinResponseInterface struct {
	context *gin.Context
	status  int
}

// Status returns the explicitly set or written status code, 0 when none
func (gri *GinResponseInterface) Status() int {
	if gri.context.Writer.Written() {
		return gri.context.Writer.Status()
	}
	return gri.status
}

// SetStatus records the response status code
func (gri *GinResponseInterface) SetStatus(code int) {
	gri.status = code
	gri.context.Status(code)
}

// Header returns a response header value
func (gri *GinResponseInterface) Header(key string) string {
	return gri.context.Writer.Header().Get(key)
}

// SetHeader sets a response header
func (gri *GinResponseInterface) SetHeader(key, value string) {
	gri.context.Header(key, value)
}

// JSON writes a JSON response
func (gri *GinResponseInterface) JSON(code int, i any) error {
	gri.context.JSON(code, i)
	return nil
}

// String writes a plain text response
func (gri *GinResponseInterface) String(code int, s string) error {
	gri.context.String(code, "%s", s)
	return nil
}

// Blob writes a raw response with the given content type
func (gri *GinResponseInterface) Blob(code int, contentType string, b []byte) error {
	gri.context.Data(code, contentType, b)
	return nil
}

// NoContent writes an empty response with the given status
func (gri *GinResponseInterface) NoContent(code int) error {
	gri.context.Status(code)
	gri.context.Writer.WriteHeaderNow()
	return nil
}

// Written reports whether the response has been written
func (gri *GinResponseInterface) Written() bool {
	return gri.context.Writer.Written()
}
