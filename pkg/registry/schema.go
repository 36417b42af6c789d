// pkg/registry/schema.go
package registry

// ActivityRegistry is the seed document the server loads at start.
// Activities are kept in document order, which is also the order the
// server lists them in.
type ActivityRegistry struct {
	Version     string     `json:"version" yaml:"version"`
	LastUpdated string     `json:"lastUpdated" yaml:"lastUpdated"`
	Activities  []Activity `json:"activities" yaml:"activities"`
}

type Activity struct {
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	Schedule        string   `json:"schedule" yaml:"schedule"`
	MaxParticipants int      `json:"max_participants" yaml:"max_participants"`
	Participants    []string `json:"participants" yaml:"participants"`
}

// Find returns the index of the named activity, or -1.
func (r *ActivityRegistry) Find(name string) int {
	for i := range r.Activities {
		if r.Activities[i].Name == name {
			return i
		}
	}
	return -1
}

// documentSchema is the JSON Schema every seed document must satisfy.
var documentSchema = map[string]interface{}{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"type":     "object",
	"required": []interface{}{"activities"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string"},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"activities": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"name", "max_participants"},
				"properties": map[string]interface{}{
					"name":        map[string]interface{}{"type": "string", "minLength": 1},
					"description": map[string]interface{}{"type": "string"},
					"schedule":    map[string]interface{}{"type": "string"},
					"max_participants": map[string]interface{}{
						"type":    "integer",
						"minimum": 1,
					},
					"participants": map[string]interface{}{
						"type":        []interface{}{"array", "null"},
						"uniqueItems": true,
						"items":       map[string]interface{}{"type": "string", "minLength": 1},
					},
				},
			},
		},
	},
}
