package toolschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func deployTool() *Tool {
	return &Tool{
		Name:        "deploy_service",
		Description: "Deploys a service to an environment.",
		Parameters: []Parameter{
			{Name: "service", Type: "string", Required: true, MinLength: intPtr(1)},
			{Name: "environment", Type: "string", Required: true, Enum: []any{"dev", "staging", "prod"}},
			{Name: "replicas", Type: "integer", Minimum: floatPtr(1), Maximum: floatPtr(10)},
			{Name: "dry_run", Type: "boolean"},
		},
	}
}

func TestValidate_AcceptsWellTypedInput(t *testing.T) {
	result := Validate(deployTool().Schema(), map[string]any{
		"service":     "billing",
		"environment": "staging",
		"replicas":    3,
		"dry_run":     true,
	})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_CoercesModelTypedStrings(t *testing.T) {
	result := Validate(deployTool().Schema(), map[string]any{
		"service":     "billing",
		"environment": "dev",
		"replicas":    "3",
		"dry_run":     "true",
	})

	assert.True(t, result.Valid)
	assert.Equal(t, 3, result.CoercedInput["replicas"])
	assert.Equal(t, true, result.CoercedInput["dry_run"])
}

func TestValidate_UncoercibleStringKeptInError(t *testing.T) {
	result := Validate(deployTool().Schema(), map[string]any{
		"service":     "billing",
		"environment": "dev",
		"dry_run":     "maybe",
	})

	require.False(t, result.Valid)
	require.Len(t, result.ErrorDetails, 1)
	detail := result.ErrorDetails[0]
	assert.Equal(t, "dry_run", detail.Path)
	assert.Equal(t, "boolean", detail.Expected)
	assert.Equal(t, "maybe", detail.Actual, "the original string survives a failed coercion")
	assert.Equal(t, "maybe", result.CoercedInput["dry_run"])
}

func TestValidate_IntegerStringBeyondRangeRejected(t *testing.T) {
	schema := CreateSchema([]Parameter{{Name: "count", Type: "integer"}})

	for _, raw := range []string{"1e30", "-1e30", "9999999999999999999999"} {
		result := Validate(schema, map[string]any{"count": raw})

		require.False(t, result.Valid, "value %q", raw)
		require.Len(t, result.ErrorDetails, 1, "value %q", raw)
		assert.Equal(t, "count", result.ErrorDetails[0].Path)
		assert.Equal(t, raw, result.ErrorDetails[0].Actual,
			"a numeric string too large for an integer stays a string")
		assert.Equal(t, raw, result.CoercedInput["count"])
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	result := Validate(deployTool().Schema(), map[string]any{"service": "billing"})

	require.False(t, result.Valid)
	require.Len(t, result.ErrorDetails, 1)
	assert.Equal(t, "environment", result.ErrorDetails[0].Path)
	assert.Contains(t, result.ErrorDetails[0].Message, "missing required")
}

func TestValidate_RejectsUnexpectedProperty(t *testing.T) {
	result := Validate(deployTool().Schema(), map[string]any{
		"service":     "billing",
		"environment": "dev",
		"force":       true,
	})

	require.False(t, result.Valid)
	assert.Equal(t, "force", result.ErrorDetails[0].Path)
}

func TestValidate_OpenSchemaToleratesExtras(t *testing.T) {
	schema := deployTool().Schema()
	schema.AdditionalProperties = true

	result := Validate(schema, map[string]any{
		"service":     "billing",
		"environment": "dev",
		"force":       true,
	})
	assert.True(t, result.Valid)
}

func TestValidate_EnumViolation(t *testing.T) {
	result := Validate(deployTool().Schema(), map[string]any{
		"service":     "billing",
		"environment": "production",
	})

	require.False(t, result.Valid)
	assert.Equal(t, "environment", result.ErrorDetails[0].Path)
}

func TestValidate_NumericBounds(t *testing.T) {
	schema := deployTool().Schema()

	result := Validate(schema, map[string]any{
		"service": "billing", "environment": "dev", "replicas": 0,
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "below minimum")

	result = Validate(schema, map[string]any{
		"service": "billing", "environment": "dev", "replicas": 11,
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "exceeds maximum")
}

func TestValidate_IntegerRejectsFraction(t *testing.T) {
	result := Validate(deployTool().Schema(), map[string]any{
		"service": "billing", "environment": "dev", "replicas": 2.5,
	})

	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "expected integer")
}

func TestValidate_IntegralFloatAccepted(t *testing.T) {
	// JSON decoding produces float64 even for whole numbers.
	result := Validate(deployTool().Schema(), map[string]any{
		"service": "billing", "environment": "dev", "replicas": float64(3),
	})
	assert.True(t, result.Valid)
}

func TestValidate_StringConstraints(t *testing.T) {
	schema := CreateSchema([]Parameter{
		{Name: "tag", Type: "string", Required: true, Pattern: `^v\d+\.\d+\.\d+$`, MaxLength: intPtr(16)},
	})

	assert.True(t, Validate(schema, map[string]any{"tag": "v1.2.3"}).Valid)

	result := Validate(schema, map[string]any{"tag": "latest"})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "pattern")

	result = Validate(schema, map[string]any{"tag": "v1.2.3-very-long-suffix"})
	assert.False(t, result.Valid)
}

func TestValidate_Formats(t *testing.T) {
	schema := CreateSchema([]Parameter{
		{Name: "when", Type: "string", Format: "date-time"},
		{Name: "day", Type: "string", Format: "date"},
		{Name: "contact", Type: "string", Format: "email"},
		{Name: "endpoint", Type: "string", Format: "uri"},
	})

	assert.True(t, Validate(schema, map[string]any{
		"when":     "2026-09-01T12:00:00Z",
		"day":      "2026-09-01",
		"contact":  "ops@example.com",
		"endpoint": "https://example.com/hook",
	}).Valid)

	tests := []struct {
		name  string
		input map[string]any
	}{
		{"bad timestamp", map[string]any{"when": "yesterday"}},
		{"bad date", map[string]any{"day": "09/01/2026"}},
		{"bad email", map[string]any{"contact": "not-an-email"}},
		{"relative uri", map[string]any{"endpoint": "/hook"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, Validate(schema, tc.input).Valid)
		})
	}
}

func TestValidate_NestedObjectAndArray(t *testing.T) {
	schema := CreateSchema([]Parameter{
		{
			Name: "target", Type: "object", Required: true,
			Properties: []Parameter{
				{Name: "host", Type: "string", Required: true},
				{Name: "port", Type: "integer", Minimum: floatPtr(1)},
			},
		},
		{
			Name: "tags", Type: "array",
			Items: &Parameter{Type: "string", MinLength: intPtr(1)},
		},
	})

	result := Validate(schema, map[string]any{
		"target": map[string]any{"host": "db01", "port": "5432"},
		"tags":   []any{"primary", ""},
	})

	require.False(t, result.Valid)
	require.Len(t, result.ErrorDetails, 1)
	assert.Equal(t, "tags[1]", result.ErrorDetails[0].Path)
	// Nested coercion still happened.
	target := result.CoercedInput["target"].(map[string]any)
	assert.Equal(t, 5432, target["port"])
}

func TestValidate_NestedRequiredPath(t *testing.T) {
	schema := CreateSchema([]Parameter{
		{
			Name: "target", Type: "object", Required: true,
			Properties: []Parameter{
				{Name: "host", Type: "string", Required: true},
			},
		},
	})

	result := Validate(schema, map[string]any{"target": map[string]any{}})
	require.False(t, result.Valid)
	assert.Equal(t, "target.host", result.ErrorDetails[0].Path)
}

func TestValidate_NullValueRejected(t *testing.T) {
	result := Validate(deployTool().Schema(), map[string]any{
		"service": nil, "environment": "dev",
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "null")
}

func TestValidate_NilSchemaAndNilInput(t *testing.T) {
	assert.True(t, Validate(nil, map[string]any{"anything": 1}).Valid)

	result := Validate(deployTool().Schema(), nil)
	assert.False(t, result.Valid, "required properties are still enforced on empty input")
}
