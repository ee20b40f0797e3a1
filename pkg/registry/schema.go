// pkg/registry/schema.go
package registry

// ActivityRegistry is the on-disk catalogue of job worker activities.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one task type. InputSchema is a JSON schema checked
// against job variables before the handler runs; an empty schema accepts
// anything.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description,omitempty"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version,omitempty"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus,omitempty"`
	InputSchema          map[string]interface{} `json:"inputSchema,omitempty"`
	OutputSchema         map[string]interface{} `json:"outputSchema,omitempty"`
	ErrorCodes           []string               `json:"errorCodes,omitempty"`
	Timeout              string                 `json:"timeout,omitempty"`
	Retries              int                    `json:"retries,omitempty"`
	Workflows            []string               `json:"workflows,omitempty"`
	Tags                 []string               `json:"tags,omitempty"`
}
