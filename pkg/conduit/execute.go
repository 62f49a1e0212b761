package conduit

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
)

// bindOutcome is the terminal state of one parameter binding
type bindOutcome int

const (
	bindBound bindOutcome = iota
	bindMissing
	bindFailed
)

// Execute runs the plan against one request: bind every parameter, invoke
// the handler through the filter chain, serialize the result.
//
// Two failure classes are kept strictly apart. Request-level problems (a
// missing required value, a failed conversion, a missing required body, a
// binder reporting no value) produce a 400 with an empty body and the
// handler and filters never run. Fatal problems (a binder signaling an
// internal failure, a required service the registry cannot satisfy) return
// as errors to the hosting framework, because they indicate server
// misconfiguration rather than malformed input.
func (p *EndpointPlan) Execute(rc RequestContext) error {
	args := make([]reflect.Value, len(p.decisions))
	failed := false

	for i, decision := range p.decisions {
		value, outcome, err := p.bind(rc, decision)
		if err != nil {
			return err
		}
		switch outcome {
		case bindBound:
			args[i] = value
		case bindMissing:
			if decision.Required {
				failed = true
				continue
			}
			args[i] = decision.fallback
		case bindFailed:
			failed = true
		}
	}

	// Short-circuit before the filter chain: partially-bound handlers are
	// never invoked.
	if failed {
		return rc.Response().NoContent(http.StatusBadRequest)
	}

	var result any
	var err error
	if len(p.filters) > 0 {
		fc := &FilterContext{
			rc:      rc,
			args:    args,
			filters: p.filters,
			invoke:  func() (any, error) { return p.invokeHandler(args) },
		}
		result, err = fc.run()
	} else {
		result, err = p.invokeHandler(args)
	}

	if err != nil {
		var httpErr *HttpError
		if errors.As(err, &httpErr) {
			return rc.Response().JSON(httpErr.StatusCode, httpErr)
		}
		return err
	}

	// A filter stage may have finished the response itself, or left a 400
	// behind after short-circuiting the chain.
	if rc.Response().Written() {
		return nil
	}
	if isNilValue(result) && rc.Response().Status() == http.StatusBadRequest {
		return rc.Response().NoContent(http.StatusBadRequest)
	}

	return p.serialize(rc, result)
}

// invokeHandler calls the handler with the bound arguments and splits the
// outputs according to the return descriptor
func (p *EndpointPlan) invokeHandler(args []reflect.Value) (any, error) {
	outs := p.sig.fn.Call(args)

	ret := p.sig.ret
	var err error
	if ret.HasError {
		if errOut := outs[len(outs)-1]; !errOut.IsNil() {
			err = errOut.Interface().(error)
		}
	}
	if ret.Kind == ReturnNone {
		return nil, err
	}
	return outs[0].Interface(), err
}

// serialize writes the result: strings verbatim, Result values through their
// own write contract, everything else through the codec with 200 unless a
// status was already set
func (p *EndpointPlan) serialize(rc RequestContext, value any) error {
	if isNilValue(value) {
		value = nil
	}

	if result, ok := value.(Result); ok {
		return result.WriteResponse(rc)
	}

	status := rc.Response().Status()
	if status == 0 {
		status = http.StatusOK
	}

	if value == nil && p.sig.ret.Kind == ReturnNone {
		return rc.Response().NoContent(http.StatusNoContent)
	}
	if text, ok := value.(string); ok && p.sig.ret.Kind == ReturnString {
		return rc.Response().String(status, text)
	}

	data, err := p.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializing %T result: %w", value, err)
	}
	return rc.Response().Blob(status, p.codec.ContentType(), data)
}

func (p *EndpointPlan) bind(rc RequestContext, decision BindingDecision) (reflect.Value, bindOutcome, error) {
	switch decision.Source {
	case SourceContext:
		return p.bindSpecialContext(rc, decision)

	case SourcePath:
		raw := rc.Param(decision.Name)
		if raw == "" {
			return reflect.Value{}, bindMissing, nil
		}
		return p.bindParsed(rc, decision, raw)

	case SourceQuery:
		values, ok := rc.QueryParams()[decision.Name]
		if !ok || len(values) == 0 {
			return reflect.Value{}, bindMissing, nil
		}
		return p.bindParsed(rc, decision, values[0])

	case SourceQuerySlice:
		values, ok := rc.QueryParams()[decision.Name]
		if !ok {
			return reflect.Value{}, bindMissing, nil
		}
		slice := reflect.MakeSlice(reflect.SliceOf(decision.Elem), 0, len(values))
		for _, raw := range values {
			parsed, err := decision.Parser(rc, raw)
			if err != nil {
				return reflect.Value{}, bindFailed, nil
			}
			elem, ok := coerce(parsed, decision.Elem)
			if !ok {
				return reflect.Value{}, bindFailed, nil
			}
			slice = reflect.Append(slice, elem)
		}
		return wrapNilable(slice, decision.Param), bindBound, nil

	case SourceHeader:
		raw := rc.Request().Header(decision.Name)
		if raw == "" {
			return reflect.Value{}, bindMissing, nil
		}
		return p.bindParsed(rc, decision, raw)

	case SourceBody:
		return p.bindBody(rc, decision)

	case SourceService:
		value, ok := p.services.TryResolve(decision.Param.Type)
		if !ok {
			if decision.Required {
				return reflect.Value{}, bindBound, fmt.Errorf("%w: %s for parameter %q",
					ErrServiceNotResolved, decision.Param.Type, decision.Param.Name)
			}
			return reflect.Value{}, bindMissing, nil
		}
		return asArg(value, decision.Param.Type), bindBound, nil

	case SourceServiceSlice:
		items := p.services.ResolveAll(decision.Elem)
		slice := reflect.MakeSlice(reflect.SliceOf(decision.Elem), 0, len(items))
		for _, item := range items {
			slice = reflect.Append(slice, reflect.ValueOf(item))
		}
		return wrapNilable(slice, decision.Param), bindBound, nil

	case SourceBinder:
		return p.bindCustom(rc, decision)

	default:
		return reflect.Value{}, bindBound, fmt.Errorf("unhandled binding source %s for parameter %q",
			decision.Source, decision.Param.Name)
	}
}

// bindSpecialContext injects a framework primitive; it never fails and is
// never absent
func (p *EndpointPlan) bindSpecialContext(rc RequestContext, decision BindingDecision) (reflect.Value, bindOutcome, error) {
	switch decision.Param.Type {
	case requestContextType:
		return asArg(rc, requestContextType), bindBound, nil
	case contextType:
		return asArg(rc.Context(), contextType), bindBound, nil
	case readerType:
		return asArg(rc.Request().Body(), readerType), bindBound, nil
	}
	return reflect.Value{}, bindBound, fmt.Errorf("unknown special context type %s for parameter %q",
		decision.Param.Type, decision.Param.Name)
}

// bindParsed runs the try-parse conversion over one raw value
func (p *EndpointPlan) bindParsed(rc RequestContext, decision BindingDecision, raw string) (reflect.Value, bindOutcome, error) {
	parsed, err := decision.Parser(rc, raw)
	if err != nil {
		return reflect.Value{}, bindFailed, nil
	}
	value, ok := coerce(parsed, baseType(decision.Param.Type))
	if !ok {
		return reflect.Value{}, bindFailed, nil
	}
	return wrapNilable(value, decision.Param), bindBound, nil
}

// bindBody deserializes the structured request body
func (p *EndpointPlan) bindBody(rc RequestContext, decision BindingDecision) (reflect.Value, bindOutcome, error) {
	var data []byte
	if body := rc.Request().Body(); body != nil {
		read, err := io.ReadAll(body)
		if err != nil {
			return reflect.Value{}, bindBound, fmt.Errorf("reading request body: %w", err)
		}
		data = read
	}

	if len(data) == 0 {
		return reflect.Value{}, bindMissing, nil
	}

	target := reflect.New(baseType(decision.Param.Type))
	if err := p.codec.Unmarshal(data, target.Interface()); err != nil {
		return reflect.Value{}, bindFailed, nil
	}
	if decision.Param.Nilable {
		return target, bindBound, nil
	}
	return target.Elem(), bindBound, nil
}

// bindCustom runs the binder protocol against a fresh instance
func (p *EndpointPlan) bindCustom(rc RequestContext, decision BindingDecision) (reflect.Value, bindOutcome, error) {
	instance := reflect.New(decision.Elem)
	binder, ok := instance.Interface().(RequestBinder)
	if !ok {
		// value-receiver implementation on a pointer-declared parameter
		binder = instance.Elem().Interface().(RequestBinder)
	}

	if err := binder.BindRequest(rc); err != nil {
		if errors.Is(err, ErrNoBindingValue) {
			return reflect.Value{}, bindMissing, nil
		}
		return reflect.Value{}, bindBound, fmt.Errorf("binding parameter %q: %w", decision.Param.Name, err)
	}

	if decision.Param.Type.Kind() == reflect.Pointer {
		return instance, bindBound, nil
	}
	return instance.Elem(), bindBound, nil
}

// coerce adapts a parsed value to the declared type, converting between
// compatible kinds (parsers for narrow integer kinds report the widest kind)
func coerce(parsed any, target reflect.Type) (reflect.Value, bool) {
	value := reflect.ValueOf(parsed)
	if !value.IsValid() {
		return reflect.Zero(target), true
	}
	if value.Type() == target {
		return value, true
	}
	if value.Type().ConvertibleTo(target) {
		return value.Convert(target), true
	}
	return reflect.Value{}, false
}

// wrapNilable boxes the bound value into a pointer for nilable parameters
func wrapNilable(value reflect.Value, param ParameterDescriptor) reflect.Value {
	if !param.Nilable {
		return value
	}
	ptr := reflect.New(value.Type())
	ptr.Elem().Set(value)
	return ptr
}

// asArg produces a call argument of exactly the declared type
func asArg(value any, target reflect.Type) reflect.Value {
	arg := reflect.New(target).Elem()
	if value != nil {
		arg.Set(reflect.ValueOf(value))
	}
	return arg
}

// isNilValue reports whether value is nil or a typed nil pointer/interface
func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}
