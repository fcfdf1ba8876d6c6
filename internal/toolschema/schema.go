// Package toolschema validates agent-supplied tool arguments against
// per-tool schemas. Arguments produced by a language model are frequently
// loosely typed ("true" instead of true, "3" instead of 3), so a coercion
// pass runs before strict structural validation; the schema check afterward
// remains the authority on final correctness.
package toolschema

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// Parameter is the authoring shape used when a tool is registered with the
// framework. It is transformed into the structural Schema the validator
// consumes.
type Parameter struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Format      string      `json:"format,omitempty"`
	Enum        []any       `json:"enum,omitempty"`
	Minimum     *float64    `json:"minimum,omitempty"`
	Maximum     *float64    `json:"maximum,omitempty"`
	MinLength   *int        `json:"minLength,omitempty"`
	MaxLength   *int        `json:"maxLength,omitempty"`
	Pattern     string      `json:"pattern,omitempty"`
	Properties  []Parameter `json:"properties,omitempty"` // object parameters
	Items       *Parameter  `json:"items,omitempty"`      // array parameters
}

// Schema is the structural, JSON-Schema-like shape the validator runs
// against. Schemas are closed by default: AdditionalProperties must be set
// explicitly to tolerate unexpected keys.
type Schema struct {
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties bool               `json:"additionalProperties"`
	Items                *Schema            `json:"items,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Format               string             `json:"format,omitempty"`
	Pattern              string             `json:"pattern,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	MaxLength            *int               `json:"maxLength,omitempty"`
}

// Tool is the registration shape for a guarded tool.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`
}

// CreateSchema transforms a tool's parameter definitions into the object
// schema its inputs are validated against, recursing into nested object
// and array parameters.
func CreateSchema(params []Parameter) *Schema {
	schema := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema, len(params)),
	}
	for i := range params {
		p := &params[i]
		schema.Properties[p.Name] = parameterSchema(p)
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

func parameterSchema(p *Parameter) *Schema {
	s := &Schema{
		Type:        p.Type,
		Description: p.Description,
		Format:      p.Format,
		Pattern:     p.Pattern,
		Enum:        p.Enum,
		Minimum:     p.Minimum,
		Maximum:     p.Maximum,
		MinLength:   p.MinLength,
		MaxLength:   p.MaxLength,
	}

	switch p.Type {
	case "object":
		if len(p.Properties) > 0 {
			nested := CreateSchema(p.Properties)
			s.Properties = nested.Properties
			s.Required = nested.Required
		}
	case "array":
		if p.Items != nil {
			s.Items = parameterSchema(p.Items)
		}
	}

	return s
}

// Schema returns the tool's compiled input schema.
func (t *Tool) Schema() *Schema {
	return CreateSchema(t.Parameters)
}

// ToMCPTool converts the registration into an MCP tool definition so the
// same schema drives both validation and advertisement to MCP clients.
func ToMCPTool(t *Tool) mcp.Tool {
	schema := t.Schema()

	properties := make(map[string]interface{}, len(schema.Properties))
	for name, prop := range schema.Properties {
		properties[name] = schemaToMap(prop)
	}

	return mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   schema.Required,
		},
	}
}

func schemaToMap(s *Schema) map[string]interface{} {
	// Round-trip through JSON: the Schema struct already carries the
	// JSON-schema field names.
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]interface{}{"type": s.Type}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{"type": s.Type}
	}
	// additionalProperties:false on leaf nodes is noise for MCP clients.
	if s.Type != "object" {
		delete(out, "additionalProperties")
	}
	return out
}
