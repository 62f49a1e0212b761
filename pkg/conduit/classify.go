package conduit

import (
	"context"
	"io"
	"reflect"

	"github.com/toyz/conduit/internal/typecache"
)

// Capability is the binding capability of a declared parameter type,
// computed once per type and cached for the process lifetime. When a type
// satisfies several capabilities the more specific protocol wins: binder
// over try-parse, try-parse over slice, slice over plain complex.
type Capability int

const (
	CapabilityComplex Capability = iota
	CapabilitySpecialContext
	CapabilityBinder
	CapabilityTryParsable
	CapabilityTryParsableSlice
	CapabilitySlice
)

// String returns the string representation of the capability
func (c Capability) String() string {
	switch c {
	case CapabilitySpecialContext:
		return "SpecialContext"
	case CapabilityBinder:
		return "Binder"
	case CapabilityTryParsable:
		return "TryParsable"
	case CapabilityTryParsableSlice:
		return "TryParsableSlice"
	case CapabilitySlice:
		return "Slice"
	default:
		return "Complex"
	}
}

var (
	requestContextType = reflect.TypeOf((*RequestContext)(nil)).Elem()
	contextType        = reflect.TypeOf((*context.Context)(nil)).Elem()
	readerType         = reflect.TypeOf((*io.Reader)(nil)).Elem()
	requestBinderType  = reflect.TypeOf((*RequestBinder)(nil)).Elem()
	byteType           = reflect.TypeOf(byte(0))
)

var capabilityCache = typecache.New[reflect.Type, Capability]()

// Classify determines the binding capability of a declared type. Pointer
// types classify as their element type; absence handling for them is decided
// by the resolver, not here.
func Classify(t reflect.Type) Capability {
	return capabilityCache.GetOrCompute(t, computeCapability)
}

func computeCapability(t reflect.Type) Capability {
	if isSpecialContextType(t) {
		return CapabilitySpecialContext
	}
	if isRequestBinderType(t) {
		return CapabilityBinder
	}

	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if _, ok := lookupParser(base); ok {
		return CapabilityTryParsable
	}

	if base.Kind() == reflect.Slice {
		elem := base.Elem()
		// []byte stays body-eligible rather than binding bytes one by one
		// from repeated query keys.
		if elem != byteType {
			if _, ok := lookupParser(elem); ok {
				return CapabilityTryParsableSlice
			}
		}
		return CapabilitySlice
	}

	return CapabilityComplex
}

// isSpecialContextType reports whether t is on the fixed allow-list of
// framework primitives injected directly from the request context
func isSpecialContextType(t reflect.Type) bool {
	switch t {
	case requestContextType, contextType, readerType:
		return true
	}
	return false
}

// isRequestBinderType reports whether t satisfies the binder protocol,
// either directly or through its pointer type (methods declared on *T)
func isRequestBinderType(t reflect.Type) bool {
	if t.Implements(requestBinderType) {
		return true
	}
	return t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(requestBinderType)
}
