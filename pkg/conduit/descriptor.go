package conduit

import (
	"fmt"
	"reflect"
)

// DirectiveKind identifies an explicit binding directive on a parameter
type DirectiveKind int

const (
	DirectiveNone DirectiveKind = iota
	DirectivePath
	DirectiveQuery
	DirectiveHeader
	DirectiveBody
	DirectiveServices
)

// String returns the string representation of the directive kind
func (k DirectiveKind) String() string {
	switch k {
	case DirectivePath:
		return "FromPath"
	case DirectiveQuery:
		return "FromQuery"
	case DirectiveHeader:
		return "FromHeader"
	case DirectiveBody:
		return "FromBody"
	case DirectiveServices:
		return "FromServices"
	default:
		return "None"
	}
}

// Directive is an explicit, per-parameter binding instruction: the source to
// bind from, an optional lookup-name override, and the empty-body policy for
// body binding.
type Directive struct {
	Kind           DirectiveKind
	Name           string // lookup name override; empty means use the parameter name
	AllowEmptyBody bool
}

// ParameterDescriptor describes one handler parameter: its name, declared
// type, optionality, default value, and explicit directive if any. It is
// built once per endpoint and immutable thereafter.
type ParameterDescriptor struct {
	Name       string
	Type       reflect.Type
	Nilable    bool // pointer-typed: absence binds nil instead of failing
	HasDefault bool
	Default    any
	Directive  Directive
}

// ParamOption configures a ParameterDescriptor
type ParamOption func(*ParameterDescriptor)

// Param declares a handler parameter by name. The declared type is taken
// from the handler function at the matching position.
func Param(name string, opts ...ParamOption) ParameterDescriptor {
	p := ParameterDescriptor{Name: name}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// FromPath binds the parameter from a path value, optionally under a
// different placeholder name
func FromPath(name ...string) ParamOption {
	return directiveOption(DirectivePath, name)
}

// FromQuery binds the parameter from a query value, optionally under a
// different key
func FromQuery(name ...string) ParamOption {
	return directiveOption(DirectiveQuery, name)
}

// FromHeader binds the parameter from a request header, optionally under a
// different header name
func FromHeader(name ...string) ParamOption {
	return directiveOption(DirectiveHeader, name)
}

// FromBody binds the parameter from the deserialized request body
func FromBody() ParamOption {
	return func(p *ParameterDescriptor) {
		p.Directive.Kind = DirectiveBody
	}
}

// FromServices binds the parameter from the dependency registry
func FromServices() ParamOption {
	return func(p *ParameterDescriptor) {
		p.Directive.Kind = DirectiveServices
	}
}

// AllowEmptyBody makes an absent request body bind a nil value instead of
// producing a 400. Only meaningful together with body binding.
func AllowEmptyBody() ParamOption {
	return func(p *ParameterDescriptor) {
		p.Directive.AllowEmptyBody = true
	}
}

// Default records a value to substitute when the parameter resolves missing
// at request time. A defaulted parameter is never required.
func Default(value any) ParamOption {
	return func(p *ParameterDescriptor) {
		p.HasDefault = true
		p.Default = value
	}
}

func directiveOption(kind DirectiveKind, name []string) ParamOption {
	return func(p *ParameterDescriptor) {
		p.Directive.Kind = kind
		if len(name) > 0 {
			p.Directive.Name = name[0]
		}
	}
}

// LookupName returns the name the parameter binds under: the directive
// override when present, the parameter's own name otherwise
func (p ParameterDescriptor) LookupName() string {
	if p.Directive.Name != "" {
		return p.Directive.Name
	}
	return p.Name
}

// ReturnKind classifies what a handler returns, resolved once per handler at
// construction so the executor switches on an enum instead of doing type
// tests per request
type ReturnKind int

const (
	ReturnNone ReturnKind = iota
	ReturnString
	ReturnData
	ReturnResult
)

// String returns the string representation of the return kind
func (k ReturnKind) String() string {
	switch k {
	case ReturnString:
		return "String"
	case ReturnData:
		return "Data"
	case ReturnResult:
		return "Result"
	default:
		return "None"
	}
}

// ReturnDescriptor describes the classified return shape of a handler
type ReturnDescriptor struct {
	Kind     ReturnKind
	HasError bool
	DataType reflect.Type // value type for String/Data/Result, nil otherwise
}

// HandlerSignature couples a handler function with its parameter
// descriptors and classified return shape. Constructed once per declared
// endpoint, immutable thereafter.
type HandlerSignature struct {
	fn     reflect.Value
	fnType reflect.Type
	params []ParameterDescriptor
	ret    ReturnDescriptor
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// NewSignature builds a HandlerSignature from a handler function and one
// descriptor per parameter, in declaration order. Parameter types are taken
// from the function; pointer-typed parameters are marked nilable.
//
// Supported return shapes: none, error, T, (T, error) where T is a string,
// a Result, or any serializable value.
func NewSignature(fn any, params ...ParameterDescriptor) (*HandlerSignature, error) {
	fnValue := reflect.ValueOf(fn)
	if !fnValue.IsValid() || fnValue.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler must be a function, got %T", fn)
	}

	fnType := fnValue.Type()
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("variadic handlers are not supported")
	}
	if fnType.NumIn() != len(params) {
		return nil, fmt.Errorf("handler takes %d parameters but %d descriptors were declared", fnType.NumIn(), len(params))
	}

	sig := &HandlerSignature{
		fn:     fnValue,
		fnType: fnType,
		params: make([]ParameterDescriptor, len(params)),
	}

	for i, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("parameter %d has no name", i)
		}
		p.Type = fnType.In(i)
		p.Nilable = p.Type.Kind() == reflect.Pointer
		sig.params[i] = p
	}

	ret, err := classifyReturn(fnType)
	if err != nil {
		return nil, err
	}
	sig.ret = ret

	return sig, nil
}

// MustSignature is like NewSignature but panics on error. Intended for
// route tables declared at startup.
func MustSignature(fn any, params ...ParameterDescriptor) *HandlerSignature {
	sig, err := NewSignature(fn, params...)
	if err != nil {
		panic(err)
	}
	return sig
}

// Parameters returns the parameter descriptors in declaration order
func (s *HandlerSignature) Parameters() []ParameterDescriptor {
	return s.params
}

// Return returns the classified return descriptor
func (s *HandlerSignature) Return() ReturnDescriptor {
	return s.ret
}

func classifyReturn(fnType reflect.Type) (ReturnDescriptor, error) {
	switch fnType.NumOut() {
	case 0:
		return ReturnDescriptor{Kind: ReturnNone}, nil
	case 1:
		out := fnType.Out(0)
		if out == errorType {
			return ReturnDescriptor{Kind: ReturnNone, HasError: true}, nil
		}
		return ReturnDescriptor{Kind: classifyReturnValue(out), DataType: out}, nil
	case 2:
		if fnType.Out(1) != errorType {
			return ReturnDescriptor{}, fmt.Errorf("handler's second return value must be error, got %s", fnType.Out(1))
		}
		out := fnType.Out(0)
		return ReturnDescriptor{Kind: classifyReturnValue(out), HasError: true, DataType: out}, nil
	default:
		return ReturnDescriptor{}, fmt.Errorf("handlers may return at most two values, got %d", fnType.NumOut())
	}
}

var resultType = reflect.TypeOf((*Result)(nil)).Elem()

func classifyReturnValue(t reflect.Type) ReturnKind {
	switch {
	case t.Implements(resultType):
		return ReturnResult
	case t.Kind() == reflect.String:
		return ReturnString
	default:
		return ReturnData
	}
}
