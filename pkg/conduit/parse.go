package conduit

import (
	"encoding"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/conduit/internal/typecache"
)

// ParseFunc converts the raw text of a path, query, or header value into a
// typed value. Parsing is deterministic and culture-invariant; a failure is
// an ordinary error, never fatal (the executor turns it into a 400 for
// required parameters).
type ParseFunc func(rc RequestContext, raw string) (any, error)

// ParseString returns the string value as-is (identity parse)
func ParseString(rc RequestContext, raw string) (string, error) {
	return raw, nil
}

// ParseBool parses a string value to bool
func ParseBool(rc RequestContext, raw string) (bool, error) {
	return strconv.ParseBool(raw)
}

// ParseInt parses a string value to int
func ParseInt(rc RequestContext, raw string) (int, error) {
	return strconv.Atoi(raw)
}

// ParseInt64 parses a string value to int64
func ParseInt64(rc RequestContext, raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// ParseFloat64 parses a string value to float64
func ParseFloat64(rc RequestContext, raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

// ParseFloat32 parses a string value to float32
func ParseFloat32(rc RequestContext, raw string) (float32, error) {
	val, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, err
	}
	return float32(val), nil
}

// ParseUUID parses a string value to uuid.UUID
func ParseUUID(rc RequestContext, raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}

// ParseTime parses a string value to time.Time using RFC 3339
func ParseTime(rc RequestContext, raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}

// ParseDuration parses a string value to time.Duration
func ParseDuration(rc RequestContext, raw string) (time.Duration, error) {
	return time.ParseDuration(raw)
}

// ParseURL parses a string value to url.URL
func ParseURL(rc RequestContext, raw string) (url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, err
	}
	return *parsed, nil
}

// ParseIP parses a string value to net.IP
func ParseIP(rc RequestContext, raw string) (net.IP, error) {
	ip := net.ParseIP(raw)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address %q", raw)
	}
	return ip, nil
}

func parseIntKind(bits int) ParseFunc {
	return func(rc RequestContext, raw string) (any, error) {
		return strconv.ParseInt(raw, 10, bits)
	}
}

func parseUintKind(bits int) ParseFunc {
	return func(rc RequestContext, raw string) (any, error) {
		return strconv.ParseUint(raw, 10, bits)
	}
}

func erase[T any](fn func(RequestContext, string) (T, error)) ParseFunc {
	return func(rc RequestContext, raw string) (any, error) {
		return fn(rc, raw)
	}
}

// builtinParsers maps declared types to their try-parse functions. Narrow
// integer kinds parse through the widest kind and are converted when the
// decision is applied.
var builtinParsers = map[reflect.Type]ParseFunc{
	reflect.TypeOf(""):               erase(ParseString),
	reflect.TypeOf(false):            erase(ParseBool),
	reflect.TypeOf(int(0)):           erase(ParseInt),
	reflect.TypeOf(int8(0)):          parseIntKind(8),
	reflect.TypeOf(int16(0)):         parseIntKind(16),
	reflect.TypeOf(int32(0)):         parseIntKind(32),
	reflect.TypeOf(int64(0)):         erase(ParseInt64),
	reflect.TypeOf(uint(0)):          parseUintKind(64),
	reflect.TypeOf(uint8(0)):         parseUintKind(8),
	reflect.TypeOf(uint16(0)):        parseUintKind(16),
	reflect.TypeOf(uint32(0)):        parseUintKind(32),
	reflect.TypeOf(uint64(0)):        parseUintKind(64),
	reflect.TypeOf(float32(0)):       erase(ParseFloat32),
	reflect.TypeOf(float64(0)):       erase(ParseFloat64),
	reflect.TypeOf(uuid.UUID{}):      erase(ParseUUID),
	reflect.TypeOf(time.Time{}):      erase(ParseTime),
	reflect.TypeOf(time.Duration(0)): erase(ParseDuration),
	reflect.TypeOf(url.URL{}):        erase(ParseURL),
	reflect.TypeOf(net.IP{}):         erase(ParseIP),
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// customParsers holds parsers registered at startup with RegisterParser.
// Reads after startup go through parserCache, so the map itself is only
// written before any plan executes.
var customParsers = map[reflect.Type]ParseFunc{}

var parserCache = typecache.New[reflect.Type, ParseFunc]()

// RegisterParser registers a custom try-parse function for T, overriding any
// builtin. Must be called before plans for endpoints using T are resolved.
func RegisterParser[T any](fn func(RequestContext, string) (T, error)) {
	var zero T
	customParsers[reflect.TypeOf(zero)] = erase(fn)
	parserCache.Clear()
}

// lookupParser returns the try-parse function for t, if the type is
// try-parsable at all. Results are memoized per type.
func lookupParser(t reflect.Type) (ParseFunc, bool) {
	fn := parserCache.GetOrCompute(t, computeParser)
	return fn, fn != nil
}

func computeParser(t reflect.Type) ParseFunc {
	if fn, ok := customParsers[t]; ok {
		return fn
	}
	if fn, ok := builtinParsers[t]; ok {
		return fn
	}
	// Any type whose pointer implements encoding.TextUnmarshaler gets the
	// textual fallback. time.Time and net.IP are handled above with stricter
	// formats before this applies.
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return func(rc RequestContext, raw string) (any, error) {
			value := reflect.New(t)
			if err := value.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
				return nil, err
			}
			return value.Elem().Interface(), nil
		}
	}
	return nil
}
