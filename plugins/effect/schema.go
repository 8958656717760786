package effect

import "sort"

// Spec describes effect to the outer world.
type Spec struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Schema      *Schema `json:"config_schema"`
}

// Property defines single schema field.
type Property struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Enum        []string    `json:"enum,omitempty"`
	Minimum     *float64    `json:"minimum,omitempty"`
	Maximum     *float64    `json:"maximum,omitempty"`
	Default     interface{} `json:"default,omitempty"`
	Items       *Property   `json:"items,omitempty"`
}

// Schema defines JSON-schema like effect config description.
type Schema struct {
	Type       string               `json:"type"`
	Properties map[string]*Property `json:"properties"`
	Required   []string             `json:"required"`
}

// BaseSchema returns fields shared by all effects.
func BaseSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Property{
			"effect_name":       String("Human-readable name for this effect", nil),
			"type":              String("Effect type", nil),
			"host":              String("WLED device host", nil),
			"segment_id":        Integer("WLED segment ID", 0, 31, DefaultSegmentID),
			"start_led":         Integer("First LED index", 0, nil, nil),
			"stop_led":          Integer("Last LED index", 0, nil, nil),
			"brightness":        Integer("Brightness (0-255)", 0, 255, DefaultBrightness),
			"reverse_direction": Bool("Reverse LED order (flip effect)", false),
			"freeze_on_manual":  Bool("Pause effect on manual WLED control", false),
			"blend_mode": String("How to blend multiple inputs", string(BlendAverage),
				string(BlendAverage), string(BlendMax), string(BlendMin), string(BlendMultiply), string(BlendAdd)),
			"transition_mode": String("Transition smoothness", string(TransitionInstant),
				string(TransitionInstant), string(TransitionFade), string(TransitionSmooth)),
			"zone_count": Integer("Number of zones to divide strip into", 1, 10, DefaultZoneCount),
			"reactive_inputs": {
				Type:        "array",
				Description: "List of entity IDs to monitor",
				Items:       &Property{Type: "string"},
				Default:     []string{},
			},
			"auto_start": Bool("Start effect once it's loaded", false),
		},
		Required: []string{"effect_name", "type", "host"},
	}
}

// Extend merges additional properties into the schema.
func (s *Schema) Extend(props map[string]*Property, required ...string) *Schema {
	for k, v := range props {
		s.Properties[k] = v
	}

	s.Required = append(s.Required, required...)
	return s
}

// Keys returns sorted property names.
func (s *Schema) Keys() []string {
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}

// Number describes float field.
func Number(description string, min, max interface{}, def interface{}) *Property {
	return &Property{
		Type:        "number",
		Description: description,
		Minimum:     bound(min),
		Maximum:     bound(max),
		Default:     def,
	}
}

// Integer describes int field.
func Integer(description string, min, max interface{}, def interface{}) *Property {
	p := Number(description, min, max, def)
	p.Type = "integer"
	return p
}

// String describes string field with optional enum.
func String(description string, def interface{}, enum ...string) *Property {
	return &Property{
		Type:        "string",
		Description: description,
		Default:     def,
		Enum:        enum,
	}
}

// Bool describes boolean field.
func Bool(description string, def bool) *Property {
	return &Property{
		Type:        "boolean",
		Description: description,
		Default:     def,
	}
}

// Color describes "R,G,B" field.
func Color(description string, def string) *Property {
	return &Property{
		Type:        "string",
		Description: description + " (R,G,B)",
		Default:     def,
	}
}

// Converts optional bound into pointer.
func bound(v interface{}) *float64 {
	switch n := v.(type) {
	case int:
		f := float64(n)
		return &f
	case float64:
		return &n
	}

	return nil
}
