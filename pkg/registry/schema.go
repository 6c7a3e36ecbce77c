// pkg/registry/schema.go
package registry

// StageRegistry is the file-backed catalogue of workflow stages that carry
// a human work item. The task linkage coordinator renders task names and
// descriptions from these definitions.
type StageRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Stages      []Stage `json:"stages"`
}

type Stage struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	AssigneeRole string `json:"assigneeRole"`
	Priority     string `json:"priority"`
	DueDays      int    `json:"dueDays"`
	// NameTemplate and DescriptionTemplate accept {{property}} and
	// {{count}} placeholders.
	NameTemplate        string `json:"nameTemplate"`
	DescriptionTemplate string `json:"descriptionTemplate"`
}

// stageSchema validates registry files on load.
const stageSchema = `{
	"type": "object",
	"required": ["version", "stages"],
	"properties": {
		"version": {"type": "string"},
		"lastUpdated": {"type": "string"},
		"stages": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "assigneeRole", "priority", "dueDays", "nameTemplate"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"displayName": {"type": "string"},
					"description": {"type": "string"},
					"assigneeRole": {"type": "string", "enum": ["agent", "landlord"]},
					"priority": {"type": "string", "enum": ["low", "medium", "high"]},
					"dueDays": {"type": "integer", "minimum": 1},
					"nameTemplate": {"type": "string", "minLength": 1},
					"descriptionTemplate": {"type": "string"}
				}
			}
		}
	}
}`
