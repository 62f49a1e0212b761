package conduit

import (
	"fmt"
	"net/http"
	"reflect"
)

// Filter wraps handler invocation. A filter sees the already-bound argument
// list by position, may replace arguments, and decides whether to continue
// the chain; its own return value, not the raw handler return, is what gets
// serialized.
type Filter func(fc *FilterContext) (any, error)

// FilterContext is the invocation context handed to each filter stage
type FilterContext struct {
	rc      RequestContext
	args    []reflect.Value
	filters []Filter
	index   int
	invoke  func() (any, error)
}

// Request returns the request context
func (fc *FilterContext) Request() RequestContext {
	return fc.rc
}

// ArgCount returns the number of bound handler arguments
func (fc *FilterContext) ArgCount() int {
	return len(fc.args)
}

// Arg returns the bound handler argument at position i
func (fc *FilterContext) Arg(i int) any {
	return fc.args[i].Interface()
}

// SetArg replaces the bound handler argument at position i. The value must
// be assignable to the parameter's declared type.
func (fc *FilterContext) SetArg(i int, value any) error {
	target := fc.args[i].Type()
	given := reflect.ValueOf(value)
	if value == nil {
		fc.args[i] = reflect.Zero(target)
		return nil
	}
	if !given.Type().AssignableTo(target) {
		return fmt.Errorf("argument %d: %s is not assignable to %s", i, given.Type(), target)
	}
	replaced := reflect.New(target).Elem()
	replaced.Set(given)
	fc.args[i] = replaced
	return nil
}

// Next continues the chain: the following filter stage, or the handler
// itself after the last one. Stages are skipped once the response status is
// already 400.
func (fc *FilterContext) Next() (any, error) {
	if fc.rc.Response().Status() == http.StatusBadRequest {
		return nil, nil
	}
	fc.index++
	if fc.index < len(fc.filters) {
		return fc.filters[fc.index](fc)
	}
	return fc.invoke()
}

// run starts the chain from the first stage
func (fc *FilterContext) run() (any, error) {
	fc.index = -1
	return fc.Next()
}
