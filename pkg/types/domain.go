package types

// Passenger is the Request Record: one entity to classify. Field names match
// the training schema column names exactly.
type Passenger struct {
	// Ticket class (1, 2 or 3).
	// example: 3
	Pclass int `json:"Pclass" example:"3"`
	// Sex: male or female.
	// example: male
	Sex string `json:"Sex" example:"male"`
	// Age in years.
	// example: 28.0
	Age float64 `json:"Age" example:"28.0"`
	// Number of siblings/spouses aboard.
	// example: 0
	SibSp int `json:"SibSp" example:"0"`
	// Number of parents/children aboard.
	// example: 0
	Parch int `json:"Parch" example:"0"`
	// Passenger fare.
	// example: 10.0
	Fare float64 `json:"Fare" example:"10.0"`
	// Port of embarkation: C, Q or S.
	// example: S
	Embarked string `json:"Embarked" example:"S"`
}

// ModelInfo describes the loaded artifact.
type ModelInfo struct {
	// Model Reference as configured.
	// example: runs:/e29e2b05b8e341d7809c89725c6797e9/model
	URI string `json:"uri" example:"runs:/e29e2b05b8e341d7809c89725c6797e9/model"`
	// Tracking run id, empty for local references.
	RunID string `json:"run_id,omitempty"`
	// Artifact path inside the run.
	ArtifactPath string `json:"artifact_path,omitempty"`
	// Local location the artifact was loaded from.
	Location string `json:"location,omitempty"`
	// Estimator kind (decision_tree, random_forest, logistic_regression).
	// example: random_forest
	ModelType string `json:"model_type" example:"random_forest"`
	// Input columns consumed by the pipeline, in pipeline order.
	Columns []string `json:"columns,omitempty"`
	// Unix time the model finished loading.
	LoadedAtUnix int64 `json:"loaded_at_unix,omitempty"`
	// Load duration in milliseconds.
	LoadMillis int64 `json:"load_ms,omitempty"`
}
