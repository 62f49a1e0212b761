package conduit

import (
	"fmt"
	"reflect"
	"runtime"
)

// BindingSource identifies where a parameter's value comes from at request
// time
type BindingSource int

const (
	SourcePath BindingSource = iota
	SourceQuery
	SourceQuerySlice
	SourceHeader
	SourceBody
	SourceService
	SourceServiceSlice
	SourceContext
	SourceBinder
)

// String returns the string representation of the binding source
func (s BindingSource) String() string {
	switch s {
	case SourcePath:
		return "Path"
	case SourceQuery:
		return "Query"
	case SourceQuerySlice:
		return "Query[]"
	case SourceHeader:
		return "Header"
	case SourceBody:
		return "Body"
	case SourceService:
		return "Service"
	case SourceServiceSlice:
		return "Service[]"
	case SourceContext:
		return "Context"
	case SourceBinder:
		return "Binder"
	default:
		return "Unknown"
	}
}

// OptionalityReason records why a parameter tolerates absence. Nilable and
// Defaulted are deliberately kept distinct: a defaulted parameter observes a
// constructed value, a nilable one observes nil, and handler code may care
// which of the two it got.
type OptionalityReason int

const (
	ReasonRequired OptionalityReason = iota
	ReasonDefaulted
	ReasonNilable
	ReasonAllowEmpty
	ReasonAlwaysPresent
)

// String returns the string representation of the reason
func (r OptionalityReason) String() string {
	switch r {
	case ReasonDefaulted:
		return "Defaulted"
	case ReasonNilable:
		return "Nilable"
	case ReasonAllowEmpty:
		return "AllowEmpty"
	case ReasonAlwaysPresent:
		return "AlwaysPresent"
	default:
		return "Required"
	}
}

// BindingDecision is the resolved binding for one parameter: its source, the
// lookup name, the parse function for textual sources, and its optionality.
// Decisions are computed once at construction and owned by the plan.
type BindingDecision struct {
	Param    ParameterDescriptor
	Source   BindingSource
	Name     string       // lookup name for path/query/header sources
	Parser   ParseFunc    // set for textual sources
	Elem     reflect.Type // element type for slice and binder sources
	Required bool
	Reason   OptionalityReason

	// fallback is substituted when the parameter is optional and missing:
	// the converted default for Defaulted, nil for Nilable and AllowEmpty.
	fallback reflect.Value
}

// EndpointPlan is the synthesized, immutable execution plan for one
// endpoint. Synthesis is request-independent and side-effect-free, so one
// plan is safely shared across arbitrarily many concurrent requests.
type EndpointPlan struct {
	sig       *HandlerSignature
	pattern   RoutePattern
	services  ServiceRegistry
	decisions []BindingDecision
	filters   []Filter
	codec     Codec
}

// PlanOption configures an EndpointPlan during Resolve
type PlanOption func(*EndpointPlan)

// WithFilters registers a filter chain around handler invocation. Filters
// run in order, the first being the outermost.
func WithFilters(filters ...Filter) PlanOption {
	return func(p *EndpointPlan) {
		p.filters = append(p.filters, filters...)
	}
}

// WithCodec overrides the codec used for body deserialization and result
// serialization
func WithCodec(codec Codec) PlanOption {
	return func(p *EndpointPlan) {
		p.codec = codec
	}
}

// Resolve decides a binding source for every parameter of the signature and
// synthesizes the endpoint's execution plan. Resolution is applied per
// parameter in declaration order; precedence, first match wins:
//
//  1. an explicit directive is honored verbatim
//  2. special context types are injected directly
//  3. binder-protocol types bind through BindRequest
//  4. a name matching a route placeholder binds from the path
//  5. try-parsable types bind from the query (slices from repeated keys)
//  6. slices of registered services, or exactly registered types, bind from
//     the registry
//  7. everything else binds from the structured body; at most one such
//     parameter per endpoint
//
// All construction errors are collected and returned together as a
// *PlanErrors; a plan is only produced when there are none.
func Resolve(sig *HandlerSignature, pattern RoutePattern, services ServiceRegistry, opts ...PlanOption) (*EndpointPlan, error) {
	if sig == nil {
		return nil, &PlanErrors{Errors: []*PlanError{{
			Code:    ErrCodeBadHandlerShape,
			Message: "nil handler signature",
		}}}
	}
	if services == nil {
		services = NewInMemoryServiceRegistry()
	}

	plan := &EndpointPlan{
		sig:      sig,
		pattern:  pattern,
		services: services,
		codec:    DefaultCodec,
	}
	for _, opt := range opts {
		opt(plan)
	}

	errs := &PlanErrors{}
	bodyParam := ""

	for _, param := range sig.params {
		decision, planErr := resolveParameter(param, pattern, services)
		if planErr != nil {
			errs.Errors = append(errs.Errors, planErr)
			continue
		}
		if decision.Source == SourceBody {
			if bodyParam != "" {
				errs.add(ErrCodeDuplicateBodyParameter, param.Name,
					fmt.Sprintf("body is already bound to parameter %q", bodyParam),
					"bind one of the parameters from another source, e.g. FromQuery or FromServices")
				continue
			}
			bodyParam = param.Name
		}
		plan.decisions = append(plan.decisions, decision)
	}

	if len(errs.Errors) > 0 {
		return nil, errs
	}
	return plan, nil
}

// NewEndpoint parses the pattern, resolves the signature against it, and
// packages the result for an EndpointRegistry
func NewEndpoint(method, pattern string, sig *HandlerSignature, services ServiceRegistry, opts ...PlanOption) (EndpointInfo, error) {
	parsed, err := ParsePattern(pattern)
	if err != nil {
		return EndpointInfo{}, err
	}
	plan, err := Resolve(sig, parsed, services, opts...)
	if err != nil {
		return EndpointInfo{}, err
	}
	name := ""
	if fn := runtime.FuncForPC(sig.fn.Pointer()); fn != nil {
		name = fn.Name()
	}
	return EndpointInfo{
		Method:  method,
		Pattern: parsed,
		Plan:    plan,
		Name:    name,
	}, nil
}

func resolveParameter(param ParameterDescriptor, pattern RoutePattern, services ServiceRegistry) (BindingDecision, *PlanError) {
	capability := Classify(param.Type)

	var decision BindingDecision
	switch {
	case param.Directive.Kind != DirectiveNone:
		resolved, planErr := resolveDirective(param, capability)
		if planErr != nil {
			return BindingDecision{}, planErr
		}
		decision = resolved

	case capability == CapabilitySpecialContext:
		decision = BindingDecision{Param: param, Source: SourceContext}

	case capability == CapabilityBinder:
		decision = BindingDecision{Param: param, Source: SourceBinder, Elem: baseType(param.Type)}

	case capability == CapabilityTryParsable && pattern.HasPlaceholder(param.Name):
		parser, _ := lookupParser(baseType(param.Type))
		decision = BindingDecision{Param: param, Source: SourcePath, Name: param.Name, Parser: parser}

	case capability == CapabilityTryParsable:
		parser, _ := lookupParser(baseType(param.Type))
		decision = BindingDecision{Param: param, Source: SourceQuery, Name: param.Name, Parser: parser}

	case capability == CapabilityTryParsableSlice:
		elem := baseType(param.Type).Elem()
		if services.Has(elem) {
			// a slice of registered services is a dependency, even when the
			// element type would also parse from text
			decision = BindingDecision{Param: param, Source: SourceServiceSlice, Elem: elem}
			break
		}
		parser, _ := lookupParser(elem)
		decision = BindingDecision{Param: param, Source: SourceQuerySlice, Name: param.Name, Parser: parser, Elem: elem}

	case capability == CapabilitySlice && services.Has(baseType(param.Type).Elem()):
		decision = BindingDecision{Param: param, Source: SourceServiceSlice, Elem: baseType(param.Type).Elem()}

	case services.Has(param.Type):
		decision = BindingDecision{Param: param, Source: SourceService}

	default:
		decision = BindingDecision{Param: param, Source: SourceBody}
	}

	return finishDecision(decision)
}

// resolveDirective honors an explicit directive verbatim
func resolveDirective(param ParameterDescriptor, capability Capability) (BindingDecision, *PlanError) {
	switch param.Directive.Kind {
	case DirectivePath, DirectiveQuery, DirectiveHeader:
		base := baseType(param.Type)
		if param.Directive.Kind == DirectiveQuery && capability == CapabilityTryParsableSlice {
			parser, _ := lookupParser(base.Elem())
			return BindingDecision{Param: param, Source: SourceQuerySlice, Name: param.LookupName(), Parser: parser, Elem: base.Elem()}, nil
		}
		parser, ok := lookupParser(base)
		if !ok {
			return BindingDecision{}, &PlanError{
				Code:       ErrCodeBadDirective,
				Parameter:  param.Name,
				Message:    fmt.Sprintf("%s requires a try-parsable type, %s is not", param.Directive.Kind, param.Type),
				Suggestion: "use a scalar type, register a parser with RegisterParser, or implement encoding.TextUnmarshaler",
			}
		}
		source := map[DirectiveKind]BindingSource{
			DirectivePath:   SourcePath,
			DirectiveQuery:  SourceQuery,
			DirectiveHeader: SourceHeader,
		}[param.Directive.Kind]
		return BindingDecision{Param: param, Source: source, Name: param.LookupName(), Parser: parser}, nil

	case DirectiveServices:
		base := baseType(param.Type)
		if base.Kind() == reflect.Slice {
			return BindingDecision{Param: param, Source: SourceServiceSlice, Elem: base.Elem()}, nil
		}
		return BindingDecision{Param: param, Source: SourceService}, nil

	case DirectiveBody:
		return BindingDecision{Param: param, Source: SourceBody}, nil

	default:
		return BindingDecision{}, &PlanError{
			Code:      ErrCodeBadDirective,
			Parameter: param.Name,
			Message:   "unknown binding directive",
		}
	}
}

// finishDecision computes requiredness, the optionality reason, and the
// fallback value substituted when an optional parameter resolves missing
func finishDecision(decision BindingDecision) (BindingDecision, *PlanError) {
	param := decision.Param

	switch {
	case param.HasDefault:
		fallback, err := convertDefault(param)
		if err != nil {
			return BindingDecision{}, &PlanError{
				Code:       ErrCodeBadDefaultValue,
				Parameter:  param.Name,
				Message:    err.Error(),
				Suggestion: "declare a default assignable to the parameter's type",
			}
		}
		decision.Reason = ReasonDefaulted
		decision.fallback = fallback
	case decision.Source == SourceContext, decision.Source == SourceServiceSlice:
		// injected sources are never absent
		decision.Reason = ReasonAlwaysPresent
	case decision.Source == SourceService:
		// an unresolvable service is fatal at request time; pointer-ness
		// does not turn the dependency into something the handler must
		// tolerate as nil
		decision.Reason = ReasonRequired
	case param.Nilable:
		decision.Reason = ReasonNilable
		decision.fallback = reflect.Zero(param.Type)
	case decision.Source == SourceBody && param.Directive.AllowEmptyBody:
		decision.Reason = ReasonAllowEmpty
		decision.fallback = reflect.Zero(param.Type)
	default:
		decision.Reason = ReasonRequired
	}

	decision.Required = decision.Reason == ReasonRequired
	return decision, nil
}

func convertDefault(param ParameterDescriptor) (reflect.Value, error) {
	if param.Default == nil {
		return reflect.Zero(param.Type), nil
	}

	given := reflect.ValueOf(param.Default)
	target := param.Type
	wrap := false
	if target.Kind() == reflect.Pointer && given.Type() != target {
		target = target.Elem()
		wrap = true
	}

	var converted reflect.Value
	switch {
	case given.Type() == target:
		converted = given
	case given.Type().ConvertibleTo(target):
		converted = given.Convert(target)
	default:
		return reflect.Value{}, fmt.Errorf("default value of type %s is not assignable to %s", given.Type(), param.Type)
	}

	if wrap {
		ptr := reflect.New(target)
		ptr.Elem().Set(converted)
		return ptr, nil
	}
	return converted, nil
}

// baseType strips one level of pointer: the type parsed into, deserialized
// into, or instantiated for a binder, with absence handling wrapping the
// pointer back around
func baseType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// Pattern returns the route pattern the plan was resolved against
func (p *EndpointPlan) Pattern() RoutePattern {
	return p.pattern
}

// Signature returns the handler signature the plan was resolved from
func (p *EndpointPlan) Signature() *HandlerSignature {
	return p.sig
}

// Decisions returns the per-parameter binding decisions in declaration order
func (p *EndpointPlan) Decisions() []BindingDecision {
	return p.decisions
}

// HandlerFunc adapts the plan to the framework-agnostic handler contract
func (p *EndpointPlan) HandlerFunc() HandlerFunc {
	return p.Execute
}
