package conduit

import (
	"reflect"
	"sync"
)

// ServiceRegistry is the dependency lookup consumed by the resolver and the
// executor. TryResolve answers by exact declared type; ResolveAll collects
// every value registered under an element type and never fails (empty slice
// when none are registered); Has reports whether the exact type is known,
// which the resolver uses at construction time.
type ServiceRegistry interface {
	TryResolve(t reflect.Type) (any, bool)
	ResolveAll(elem reflect.Type) []any
	Has(t reflect.Type) bool
}

// InMemoryServiceRegistry implements ServiceRegistry with a mutex-guarded map
type InMemoryServiceRegistry struct {
	mu       sync.RWMutex
	services map[reflect.Type][]any
}

// NewInMemoryServiceRegistry creates a new empty service registry
func NewInMemoryServiceRegistry() *InMemoryServiceRegistry {
	return &InMemoryServiceRegistry{
		services: make(map[reflect.Type][]any),
	}
}

// Register adds a value under its dynamic type. To register under an
// interface type, use Provide.
func (r *InMemoryServiceRegistry) Register(value any) {
	r.register(reflect.TypeOf(value), value)
}

func (r *InMemoryServiceRegistry) register(t reflect.Type, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[t] = append(r.services[t], value)
}

// TryResolve returns the most recently registered value for t
func (r *InMemoryServiceRegistry) TryResolve(t reflect.Type) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values, exists := r.services[t]
	if !exists || len(values) == 0 {
		return nil, false
	}
	return values[len(values)-1], true
}

// ResolveAll returns every value registered under elem, in registration order
func (r *InMemoryServiceRegistry) ResolveAll(elem reflect.Type) []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := r.services[elem]
	return append([]any(nil), values...)
}

// Has reports whether any value is registered under t
func (r *InMemoryServiceRegistry) Has(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.services[t]) > 0
}

// Provide registers value under the explicit type T, which may be an
// interface type the value implements
func Provide[T any](r *InMemoryServiceRegistry, value T) {
	r.register(reflect.TypeOf((*T)(nil)).Elem(), value)
}

// DefaultServiceRegistry is the global service registry
var DefaultServiceRegistry = NewInMemoryServiceRegistry()

// EndpointInfo contains a built endpoint: its method, parsed pattern, and
// the synthesized plan, plus metadata for diagnostics
type EndpointInfo struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, etc.)
	Method string

	// Pattern is the parsed route pattern
	Pattern RoutePattern

	// Plan is the synthesized execution plan
	Plan *EndpointPlan

	// Name identifies the handler for diagnostics
	Name string

	// Middlewares are applied around the plan when the endpoint is mounted
	Middlewares []MiddlewareFunc
}

// EndpointRegistry provides access to all built endpoints in the application
type EndpointRegistry interface {
	// RegisterEndpoint adds an endpoint to the registry
	RegisterEndpoint(info EndpointInfo)

	// GetAllEndpoints returns all registered endpoints
	GetAllEndpoints() []EndpointInfo

	// GetEndpointsByMethod returns endpoints filtered by HTTP method
	GetEndpointsByMethod(method string) []EndpointInfo

	// Apply registers every endpoint's handler with a web server
	Apply(server WebServerInterface)
}

// InMemoryEndpointRegistry implements EndpointRegistry using an in-memory slice
type InMemoryEndpointRegistry struct {
	mu        sync.RWMutex
	endpoints []EndpointInfo
}

// NewInMemoryEndpointRegistry creates a new in-memory endpoint registry
func NewInMemoryEndpointRegistry() *InMemoryEndpointRegistry {
	return &InMemoryEndpointRegistry{
		endpoints: make([]EndpointInfo, 0),
	}
}

// RegisterEndpoint adds an endpoint to the registry
func (r *InMemoryEndpointRegistry) RegisterEndpoint(info EndpointInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = append(r.endpoints, info)
}

// GetAllEndpoints returns all registered endpoints
func (r *InMemoryEndpointRegistry) GetAllEndpoints() []EndpointInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]EndpointInfo(nil), r.endpoints...)
}

// GetEndpointsByMethod returns endpoints filtered by HTTP method
func (r *InMemoryEndpointRegistry) GetEndpointsByMethod(method string) []EndpointInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []EndpointInfo
	for _, ep := range r.endpoints {
		if ep.Method == method {
			filtered = append(filtered, ep)
		}
	}
	return filtered
}

// Apply registers every endpoint's handler with the given web server
func (r *InMemoryEndpointRegistry) Apply(server WebServerInterface) {
	for _, ep := range r.GetAllEndpoints() {
		server.RegisterRoute(ep.Method, ep.Pattern, ep.Plan.HandlerFunc(), ep.Middlewares...)
	}
}

// DefaultEndpointRegistry is the global endpoint registry
var DefaultEndpointRegistry EndpointRegistry = NewInMemoryEndpointRegistry()

// RegisterEndpoint adds an endpoint to the global registry
func RegisterEndpoint(info EndpointInfo) {
	DefaultEndpointRegistry.RegisterEndpoint(info)
}

// GetEndpoints returns all endpoints from the global registry
func GetEndpoints() []EndpointInfo {
	return DefaultEndpointRegistry.GetAllEndpoints()
}
