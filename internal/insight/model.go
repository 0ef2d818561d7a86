package insight

import "github.com/leapstack-labs/routelens/internal/field"

// Model is the static mathematical-model description served by GET model.
type Model struct {
	Name        field.Value    `json:"name" yaml:"name"`
	Description field.Value    `json:"description" yaml:"description"`
	Variables   []field.Record `json:"decision_variables" yaml:"decision_variables"`
	Objective   struct {
		Type       field.Value    `json:"type" yaml:"type"`
		Formula    field.Value    `json:"formula" yaml:"formula"`
		Components []field.Record `json:"components" yaml:"components"`
	} `json:"objective_function" yaml:"objective_function"`
	Constraints    []field.Record `json:"constraints" yaml:"constraints"`
	DataSources    field.Record   `json:"data_sources" yaml:"data_sources"`
	TransportModes field.Record   `json:"transport_modes" yaml:"transport_modes"`
}

// ModelDescription is the model plus the service's summary of the loaded
// dataset, which is empty until something is loaded.
type ModelDescription struct {
	Model   Model        `json:"model" yaml:"model"`
	Summary field.Record `json:"summary" yaml:"summary"`
}
