package conduit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

func TestResolve_PrecedenceOrder(t *testing.T) {
	tests := []struct {
		name     string
		sig      *HandlerSignature
		pattern  string
		services func(*InMemoryServiceRegistry)
		source   BindingSource
	}{
		{
			name: "directive beats a matching placeholder",
			sig: MustSignature(func(id int) string { return "" },
				Param("id", FromQuery())),
			pattern: "/users/{id}",
			source:  SourceQuery,
		},
		{
			name: "placeholder beats query",
			sig: MustSignature(func(id int) string { return "" },
				Param("id")),
			pattern: "/users/{id}",
			source:  SourcePath,
		},
		{
			name: "parsable without a placeholder binds from query",
			sig: MustSignature(func(id int) string { return "" },
				Param("id")),
			pattern: "/users",
			source:  SourceQuery,
		},
		{
			name: "registered type binds from services",
			sig: MustSignature(func(svc *priceService) string { return "" },
				Param("svc")),
			pattern: "/prices",
			services: func(r *InMemoryServiceRegistry) {
				r.Register(&priceService{})
			},
			source: SourceService,
		},
		{
			name: "unregistered complex type binds from body",
			sig: MustSignature(func(order orderPayload) string { return "" },
				Param("order")),
			pattern: "/orders",
			source:  SourceBody,
		},
		{
			name: "binder protocol beats everything implicit",
			sig: MustSignature(func(ref refererBinding) string { return "" },
				Param("ref")),
			pattern: "/track/{ref}",
			source:  SourceBinder,
		},
		{
			name: "parsable slice binds from repeated query keys",
			sig: MustSignature(func(n []int) string { return "" },
				Param("n")),
			pattern: "/sum",
			source:  SourceQuerySlice,
		},
		{
			name: "slice of registered services binds from the registry",
			sig: MustSignature(func(svcs []*priceService) string { return "" },
				Param("svcs")),
			pattern: "/prices",
			services: func(r *InMemoryServiceRegistry) {
				r.Register(&priceService{})
			},
			source: SourceServiceSlice,
		},
		{
			name: "byte slice stays body eligible",
			sig: MustSignature(func(raw []byte) string { return "" },
				Param("raw")),
			pattern: "/upload",
			source:  SourceBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services := NewInMemoryServiceRegistry()
			if tt.services != nil {
				tt.services(services)
			}

			plan, err := Resolve(tt.sig, MustParsePattern(tt.pattern), services)
			require.NoError(t, err)
			require.Len(t, plan.Decisions(), 1)
			assert.Equal(t, tt.source, plan.Decisions()[0].Source)
		})
	}
}

func TestResolve_SpecialContextTypes(t *testing.T) {
	sig := MustSignature(func(rc RequestContext) string { return "" }, Param("rc"))
	plan := mustPlan(t, "/any", sig, nil)

	decision := plan.Decisions()[0]
	assert.Equal(t, SourceContext, decision.Source)
	assert.False(t, decision.Required)
	assert.Equal(t, ReasonAlwaysPresent, decision.Reason)
}

func TestResolve_ServiceParametersStayRequired(t *testing.T) {
	t.Run("pointer type with directive", func(t *testing.T) {
		sig := MustSignature(func(svc *priceService) string { return "" },
			Param("svc", FromServices()))
		plan := mustPlan(t, "/prices", sig, NewInMemoryServiceRegistry())

		decision := plan.Decisions()[0]
		assert.Equal(t, SourceService, decision.Source)
		assert.True(t, decision.Required)
		assert.Equal(t, ReasonRequired, decision.Reason)
	})

	t.Run("pointer type registered at construction", func(t *testing.T) {
		services := NewInMemoryServiceRegistry()
		services.Register(&priceService{})

		sig := MustSignature(func(svc *priceService) string { return "" },
			Param("svc"))
		plan := mustPlan(t, "/prices", sig, services)

		decision := plan.Decisions()[0]
		assert.Equal(t, SourceService, decision.Source)
		assert.True(t, decision.Required)
	})

	t.Run("default still applies", func(t *testing.T) {
		fallback := &priceService{margin: 9}
		sig := MustSignature(func(svc *priceService) string { return "" },
			Param("svc", FromServices(), Default(fallback)))
		plan := mustPlan(t, "/prices", sig, NewInMemoryServiceRegistry())

		decision := plan.Decisions()[0]
		assert.False(t, decision.Required)
		assert.Equal(t, ReasonDefaulted, decision.Reason)
	})
}

func TestResolve_ServiceSliceIsNeverRequired(t *testing.T) {
	sig := MustSignature(func(svcs []*priceService) string { return "" },
		Param("svcs", FromServices()))
	plan := mustPlan(t, "/prices", sig, NewInMemoryServiceRegistry())

	decision := plan.Decisions()[0]
	assert.Equal(t, SourceServiceSlice, decision.Source)
	assert.False(t, decision.Required)
	assert.Equal(t, ReasonAlwaysPresent, decision.Reason)
}

func TestResolve_DuplicateBodyParameter(t *testing.T) {
	sig := MustSignature(func(a orderPayload, b orderPayload) string { return "" },
		Param("a"), Param("b"))

	_, err := Resolve(sig, MustParsePattern("/orders"), nil)
	require.Error(t, err)

	var planErrs *PlanErrors
	require.ErrorAs(t, err, &planErrs)
	require.Len(t, planErrs.Errors, 1)
	assert.Equal(t, ErrCodeDuplicateBodyParameter, planErrs.Errors[0].Code)
	assert.Equal(t, "b", planErrs.Errors[0].Parameter)
	assert.Contains(t, planErrs.Errors[0].Message, `"a"`)
}

func TestResolve_DirectiveOnUnparsableType(t *testing.T) {
	sig := MustSignature(func(order orderPayload) string { return "" },
		Param("order", FromQuery()))

	_, err := Resolve(sig, MustParsePattern("/orders"), nil)
	require.Error(t, err)

	var planErrs *PlanErrors
	require.ErrorAs(t, err, &planErrs)
	assert.Equal(t, ErrCodeBadDirective, planErrs.Errors[0].Code)
	assert.NotEmpty(t, planErrs.Errors[0].Suggestion)
}

func TestResolve_BadDefaultValue(t *testing.T) {
	sig := MustSignature(func(limit int) string { return "" },
		Param("limit", Default("fifty")))

	_, err := Resolve(sig, MustParsePattern("/items"), nil)
	require.Error(t, err)

	var planErrs *PlanErrors
	require.ErrorAs(t, err, &planErrs)
	assert.Equal(t, ErrCodeBadDefaultValue, planErrs.Errors[0].Code)
}

func TestResolve_CollectsEveryError(t *testing.T) {
	sig := MustSignature(func(order orderPayload, limit int) string { return "" },
		Param("order", FromQuery()),
		Param("limit", Default("fifty")))

	_, err := Resolve(sig, MustParsePattern("/orders"), nil)
	require.Error(t, err)

	var planErrs *PlanErrors
	require.ErrorAs(t, err, &planErrs)
	assert.Len(t, planErrs.Errors, 2)
	assert.Contains(t, err.Error(), "order")
	assert.Contains(t, err.Error(), "limit")
}

func TestResolve_NilSignature(t *testing.T) {
	_, err := Resolve(nil, MustParsePattern("/x"), nil)
	require.Error(t, err)

	var planErrs *PlanErrors
	require.ErrorAs(t, err, &planErrs)
	assert.Equal(t, ErrCodeBadHandlerShape, planErrs.Errors[0].Code)
}

func TestResolve_DirectiveNameOverride(t *testing.T) {
	sig := MustSignature(func(key string) string { return "" },
		Param("key", FromHeader("X-Api-Key")))
	plan := mustPlan(t, "/secure", sig, nil)

	decision := plan.Decisions()[0]
	assert.Equal(t, SourceHeader, decision.Source)
	assert.Equal(t, "X-Api-Key", decision.Name)
}

func TestResolve_OptionalityReasons(t *testing.T) {
	tests := []struct {
		name     string
		sig      *HandlerSignature
		reason   OptionalityReason
		required bool
	}{
		{
			name: "plain value is required",
			sig: MustSignature(func(q string) string { return "" },
				Param("q")),
			reason:   ReasonRequired,
			required: true,
		},
		{
			name: "default wins over nilable",
			sig: MustSignature(func(q *string) string { return "" },
				Param("q", Default("all"))),
			reason: ReasonDefaulted,
		},
		{
			name: "pointer type is nilable",
			sig: MustSignature(func(q *string) string { return "" },
				Param("q")),
			reason: ReasonNilable,
		},
		{
			name: "empty body allowance",
			sig: MustSignature(func(order orderPayload) string { return "" },
				Param("order", AllowEmptyBody())),
			reason: ReasonAllowEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := mustPlan(t, "/items", tt.sig, nil)
			decision := plan.Decisions()[0]

			assert.Equal(t, tt.reason, decision.Reason)
			assert.Equal(t, tt.required, decision.Required)
		})
	}
}

func TestResolve_QuerySliceOfRegisteredParsableType(t *testing.T) {
	// A slice whose element type both parses from text and is registered as
	// a service resolves as a dependency.
	services := NewInMemoryServiceRegistry()
	services.Register(42)

	sig := MustSignature(func(n []int) string { return "" }, Param("n"))
	plan, err := Resolve(sig, MustParsePattern("/sum"), services)
	require.NoError(t, err)

	assert.Equal(t, SourceServiceSlice, plan.Decisions()[0].Source)
}

func TestNewSignature_Validation(t *testing.T) {
	t.Run("not a function", func(t *testing.T) {
		_, err := NewSignature("nope")
		assert.Error(t, err)
	})

	t.Run("variadic handler", func(t *testing.T) {
		_, err := NewSignature(func(parts ...string) {}, Param("parts"))
		assert.Error(t, err)
	})

	t.Run("descriptor count mismatch", func(t *testing.T) {
		_, err := NewSignature(func(a, b string) {}, Param("a"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 parameters")
	})

	t.Run("unnamed parameter", func(t *testing.T) {
		_, err := NewSignature(func(a string) {}, Param(""))
		assert.Error(t, err)
	})

	t.Run("error must be last", func(t *testing.T) {
		_, err := NewSignature(func() (string, int) { return "", 0 })
		assert.Error(t, err)
	})

	t.Run("too many return values", func(t *testing.T) {
		_, err := NewSignature(func() (string, string, error) { return "", "", nil })
		assert.Error(t, err)
	})
}

func TestHandlerSignature_ReturnClassification(t *testing.T) {
	tests := []struct {
		name     string
		fn       any
		kind     ReturnKind
		hasError bool
	}{
		{"no return", func() {}, ReturnNone, false},
		{"bare error", func() error { return nil }, ReturnNone, true},
		{"string", func() string { return "" }, ReturnString, false},
		{"string and error", func() (string, error) { return "", nil }, ReturnString, true},
		{"data", func() orderPayload { return orderPayload{} }, ReturnData, false},
		{"result", func() *Response { return nil }, ReturnResult, false},
		{"result and error", func() (*Response, error) { return nil, nil }, ReturnResult, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := NewSignature(tt.fn)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, sig.Return().Kind)
			assert.Equal(t, tt.hasError, sig.Return().HasError)
		})
	}
}

func TestNewEndpoint(t *testing.T) {
	sig := MustSignature(func(id int) string { return "" }, Param("id"))

	ep, err := NewEndpoint("GET", "/users/{id:int}", sig, nil)
	require.NoError(t, err)

	assert.Equal(t, "GET", ep.Method)
	assert.Equal(t, "/users/{id:int}", ep.Pattern.Raw())
	assert.NotNil(t, ep.Plan)
	assert.True(t, strings.Contains(ep.Name, "TestNewEndpoint"))
}

func TestNewEndpoint_BadPattern(t *testing.T) {
	sig := MustSignature(func() string { return "" })

	_, err := NewEndpoint("GET", "users", sig, nil)
	assert.Error(t, err)
}
