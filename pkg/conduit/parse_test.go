package conduit

import (
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int
		expectError bool
	}{
		{name: "positive", input: "123", expected: 123},
		{name: "negative", input: "-456", expected: -456},
		{name: "zero", input: "0", expected: 0},
		{name: "letters", input: "abc", expectError: true},
		{name: "float", input: "123.45", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseInt(nil, tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input       string
		expected    bool
		expectError bool
	}{
		{input: "true", expected: true},
		{input: "false", expected: false},
		{input: "1", expected: true},
		{input: "0", expected: false},
		{input: "yes", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseBool(nil, tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseUUID(t *testing.T) {
	id := uuid.New()

	result, err := ParseUUID(nil, id.String())
	require.NoError(t, err)
	assert.Equal(t, id, result)

	_, err = ParseUUID(nil, "not-a-uuid")
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	stamp := time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)

	result, err := ParseTime(nil, stamp.Format(time.RFC3339))
	require.NoError(t, err)
	assert.True(t, stamp.Equal(result))

	_, err = ParseTime(nil, "14/03/2024")
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	result, err := ParseDuration(nil, "1h30m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, result)

	_, err = ParseDuration(nil, "soon")
	assert.Error(t, err)
}

func TestParseURL(t *testing.T) {
	result, err := ParseURL(nil, "https://example.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, "example.com", result.Host)
	assert.Equal(t, "/a", result.Path)

	_, err = ParseURL(nil, "://broken")
	assert.Error(t, err)
}

func TestParseIP(t *testing.T) {
	result, err := ParseIP(nil, "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, net.ParseIP("192.0.2.1").Equal(result))

	_, err = ParseIP(nil, "999.0.0.1")
	assert.Error(t, err)
}

func TestParseFloat(t *testing.T) {
	f64, err := ParseFloat64(nil, "3.25")
	require.NoError(t, err)
	assert.Equal(t, 3.25, f64)

	f32, err := ParseFloat32(nil, "1.5")
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f32)

	_, err = ParseFloat64(nil, "pi")
	assert.Error(t, err)
}

func TestLookupParser_NarrowIntegerKinds(t *testing.T) {
	parser, ok := lookupParser(reflect.TypeOf(int8(0)))
	require.True(t, ok)

	value, err := parser(nil, "100")
	require.NoError(t, err)
	assert.EqualValues(t, 100, value)

	// out of range for int8
	_, err = parser(nil, "300")
	assert.Error(t, err)
}

func TestLookupParser_TextUnmarshalerFallback(t *testing.T) {
	parser, ok := lookupParser(reflect.TypeOf(dialect{}))
	require.True(t, ok)

	value, err := parser(nil, "ansi")
	require.NoError(t, err)
	assert.Equal(t, dialect{name: "ansi"}, value)
}

func TestLookupParser_UnknownType(t *testing.T) {
	_, ok := lookupParser(reflect.TypeOf(orderPayload{}))
	assert.False(t, ok)
}

// temperature has no builtin parser or TextUnmarshaler; it only becomes
// parsable through explicit registration
type temperature struct {
	celsius float64
}

func TestRegisterParser(t *testing.T) {
	RegisterParser(func(rc RequestContext, raw string) (temperature, error) {
		trimmed, found := strings.CutSuffix(raw, "C")
		if !found {
			return temperature{}, fmt.Errorf("temperature %q must end in C", raw)
		}
		celsius, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return temperature{}, err
		}
		return temperature{celsius: celsius}, nil
	})

	parser, ok := lookupParser(reflect.TypeOf(temperature{}))
	require.True(t, ok)

	value, err := parser(nil, "21.5C")
	require.NoError(t, err)
	assert.Equal(t, temperature{celsius: 21.5}, value)

	_, err = parser(nil, "21.5F")
	assert.Error(t, err)
}

func TestRegisterParser_UsedByThePipeline(t *testing.T) {
	RegisterParser(func(rc RequestContext, raw string) (temperature, error) {
		celsius, err := strconv.ParseFloat(strings.TrimSuffix(raw, "C"), 64)
		if err != nil {
			return temperature{}, err
		}
		return temperature{celsius: celsius}, nil
	})

	sig := MustSignature(func(temp temperature) string {
		return strconv.FormatFloat(temp.celsius, 'f', 1, 64)
	}, Param("temp"))
	plan := mustPlan(t, "/thermostat", sig, nil)

	rc := newStubContext()
	rc.query.Add("temp", "19.5C")

	require.NoError(t, plan.Execute(rc))
	assert.Equal(t, "19.5", rc.response.body.String())
}

func TestParseRoundTrip(t *testing.T) {
	t.Run("uuid", func(t *testing.T) {
		id := uuid.New()
		parsed, err := ParseUUID(nil, id.String())
		require.NoError(t, err)
		assert.Equal(t, id.String(), parsed.String())
	})

	t.Run("time", func(t *testing.T) {
		stamp := time.Now().UTC().Truncate(time.Second)
		parsed, err := ParseTime(nil, stamp.Format(time.RFC3339))
		require.NoError(t, err)
		assert.Equal(t, stamp.Format(time.RFC3339), parsed.Format(time.RFC3339))
	})
}
