package types

// PredictResponse is the Prediction Result returned by POST /predict.
type PredictResponse struct {
	// Raw class label produced by the model.
	// example: 0
	Prediction int `json:"prediction" example:"0"`
	// Human-readable status for the label.
	// example: Not Survived
	SurvivalStatus string `json:"survival_status" example:"Not Survived"`
}

// FieldError describes one offending request field.
type FieldError struct {
	// Field name as it appears in the request.
	// example: Age
	Field string `json:"field" example:"Age"`
	// Why the field was rejected.
	// example: field required
	Reason string `json:"reason" example:"field required"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: request validation failed
	Error string `json:"error" example:"request validation failed"`
	// HTTP status code.
	// example: 422
	Code int `json:"code" example:"422"`
	// Error category: not_ready, validation, prediction or internal.
	// example: validation
	Category string `json:"category,omitempty" example:"validation"`
	// Field-level detail for validation errors.
	Fields []FieldError `json:"fields,omitempty"`
}

// MessageResponse is returned by GET /.
type MessageResponse struct {
	// example: Titanic Survival Prediction API is running.
	Message string `json:"message" example:"Titanic Survival Prediction API is running."`
}

// FieldSpec describes one Request Record field for GET /schema.
type FieldSpec struct {
	// example: Embarked
	Name string `json:"name" example:"Embarked"`
	// One of integer, number, enum.
	// example: enum
	Type string `json:"type" example:"enum"`
	// Allowed values for enum fields.
	Enum []string `json:"enum,omitempty"`
}

// SchemaResponse is returned by GET /schema.
type SchemaResponse struct {
	// Fields in training schema order.
	Fields []FieldSpec `json:"fields"`
	// Example request body.
	Example Passenger `json:"example"`
	// Label to status mapping used for responses.
	Labels map[int]string `json:"labels"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Readiness state: not_ready, ready or failed.
	// example: ready
	State string `json:"state" example:"ready"`
	// Loaded model details, absent until ready.
	Model *ModelInfo `json:"model,omitempty"`
	// Model load error, set when state is failed.
	Error string `json:"error,omitempty"`
	// Successful predictions served.
	// example: 12
	PredictionsTotal uint64 `json:"predictions_total" example:"12"`
	// Requests rejected by validation.
	// example: 1
	ValidationErrorsTotal uint64 `json:"validation_errors_total" example:"1"`
	// Predictor failures.
	// example: 0
	PredictionErrorsTotal uint64 `json:"prediction_errors_total" example:"0"`
	// Requests rejected because the model was not ready.
	// example: 0
	NotReadyTotal uint64 `json:"not_ready_total" example:"0"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
