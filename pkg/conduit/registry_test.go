package conduit

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifier interface {
	Notify(message string)
}

type emailNotifier struct {
	sent []string
}

func (n *emailNotifier) Notify(message string) {
	n.sent = append(n.sent, message)
}

func TestServiceRegistry_RegisterAndResolve(t *testing.T) {
	registry := NewInMemoryServiceRegistry()
	svc := &priceService{margin: 1.5}
	registry.Register(svc)

	resolved, ok := registry.TryResolve(reflect.TypeOf(svc))
	require.True(t, ok)
	assert.Same(t, svc, resolved)

	_, ok = registry.TryResolve(reflect.TypeOf(""))
	assert.False(t, ok)
}

func TestServiceRegistry_LastRegistrationWins(t *testing.T) {
	registry := NewInMemoryServiceRegistry()
	first := &priceService{margin: 1}
	second := &priceService{margin: 2}
	registry.Register(first)
	registry.Register(second)

	resolved, ok := registry.TryResolve(reflect.TypeOf(first))
	require.True(t, ok)
	assert.Same(t, second, resolved)
}

func TestServiceRegistry_ResolveAll(t *testing.T) {
	registry := NewInMemoryServiceRegistry()
	first := &priceService{margin: 1}
	second := &priceService{margin: 2}
	registry.Register(first)
	registry.Register(second)

	all := registry.ResolveAll(reflect.TypeOf(first))
	require.Len(t, all, 2)
	assert.Same(t, first, all[0])
	assert.Same(t, second, all[1])

	assert.Empty(t, registry.ResolveAll(reflect.TypeOf("")))
}

func TestServiceRegistry_Has(t *testing.T) {
	registry := NewInMemoryServiceRegistry()
	assert.False(t, registry.Has(reflect.TypeOf(&priceService{})))

	registry.Register(&priceService{})
	assert.True(t, registry.Has(reflect.TypeOf(&priceService{})))
}

func TestProvide_RegistersUnderInterfaceType(t *testing.T) {
	registry := NewInMemoryServiceRegistry()
	impl := &emailNotifier{}
	Provide[notifier](registry, impl)

	notifierType := reflect.TypeOf((*notifier)(nil)).Elem()
	require.True(t, registry.Has(notifierType))

	resolved, ok := registry.TryResolve(notifierType)
	require.True(t, ok)
	assert.Same(t, impl, resolved)

	// not registered under the concrete type
	_, ok = registry.TryResolve(reflect.TypeOf(impl))
	assert.False(t, ok)
}

func TestProvide_InterfaceParameterBinding(t *testing.T) {
	registry := NewInMemoryServiceRegistry()
	impl := &emailNotifier{}
	Provide[notifier](registry, impl)

	sig := MustSignature(func(n notifier) string {
		n.Notify("hello")
		return "sent"
	}, Param("n"))
	plan := mustPlan(t, "/notify", sig, registry)

	rc := newStubContext()
	require.NoError(t, plan.Execute(rc))

	assert.Equal(t, "sent", rc.response.body.String())
	assert.Equal(t, []string{"hello"}, impl.sent)
}

// recordingServer captures route registrations for registry tests
type recordingServer struct {
	routes []string
}

func (s *recordingServer) RegisterRoute(method string, pattern RoutePattern, handler HandlerFunc, middlewares ...MiddlewareFunc) {
	s.routes = append(s.routes, method+" "+pattern.Raw())
}

func (s *recordingServer) RegisterGroup(prefix string) RouteGroup { return nil }
func (s *recordingServer) Use(middleware MiddlewareFunc)          {}
func (s *recordingServer) Start(addr string) error                { return nil }
func (s *recordingServer) Stop(ctx context.Context) error         { return nil }
func (s *recordingServer) Name() string                           { return "recording" }

func TestEndpointRegistry(t *testing.T) {
	registry := NewInMemoryEndpointRegistry()

	getUsers, err := NewEndpoint("GET", "/users", MustSignature(func() string { return "" }), nil)
	require.NoError(t, err)
	createUser, err := NewEndpoint("POST", "/users", MustSignature(func() string { return "" }), nil)
	require.NoError(t, err)

	registry.RegisterEndpoint(getUsers)
	registry.RegisterEndpoint(createUser)

	assert.Len(t, registry.GetAllEndpoints(), 2)
	assert.Len(t, registry.GetEndpointsByMethod("GET"), 1)
	assert.Len(t, registry.GetEndpointsByMethod("POST"), 1)
	assert.Empty(t, registry.GetEndpointsByMethod("DELETE"))
}

func TestEndpointRegistry_Apply(t *testing.T) {
	registry := NewInMemoryEndpointRegistry()

	ep, err := NewEndpoint("GET", "/users/{id}", MustSignature(func(id int) string { return "" }, Param("id")), nil)
	require.NoError(t, err)
	registry.RegisterEndpoint(ep)

	server := &recordingServer{}
	registry.Apply(server)

	assert.Equal(t, []string{"GET /users/{id}"}, server.routes)
}
