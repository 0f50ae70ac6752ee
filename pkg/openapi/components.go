package openapi

// Components holds reusable schema and response definitions.
type Components struct {
	Schemas   map[string]*Schema   `json:"schemas,omitempty"`
	Responses map[string]*Response `json:"responses,omitempty"`
}

// NewComponents returns the shared schemas and error responses every resource references.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Entity": {
				Type:                 "object",
				Description:          "Free-form record with a store-assigned id",
				AdditionalProperties: true,
				Properties: map[string]*Schema{
					"id":        {Type: "string"},
					"createdAt": {Type: "string", Format: "date-time"},
					"updatedAt": {Type: "string", Format: "date-time"},
				},
			},
			"Payload": {
				Type:                 "object",
				Description:          "Entity fields to set",
				AdditionalProperties: true,
			},
			"EntityPage": {
				Type: "object",
				Properties: map[string]*Schema{
					"data":         {Type: "array", Items: SchemaRef("Entity")},
					"page":         {Type: "integer"},
					"totalPages":   {Type: "integer"},
					"totalRecords": {Type: "integer"},
				},
				Required: []string{"data", "page", "totalPages", "totalRecords"},
			},
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"key":   {Type: "string"},
					"error": {Type: "string"},
				},
				Required: []string{"key", "error"},
			},
			"Message": {
				Type: "object",
				Properties: map[string]*Schema{
					"message": {Type: "string"},
				},
				Required: []string{"message"},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":    ResponseJSON("Invalid identifier, body, or upload", "Error"),
			"NotFound":      ResponseJSON("Entity not found", "Error"),
			"InternalError": ResponseJSON("Store failure", "Error"),
		},
	}
}

// AddSchemas merges schemas into the components, replacing same-named entries.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	for name, schema := range schemas {
		c.Schemas[name] = schema
	}
}

// AddResponses merges responses into the components, replacing same-named entries.
func (c *Components) AddResponses(responses map[string]*Response) {
	for name, resp := range responses {
		c.Responses[name] = resp
	}
}
