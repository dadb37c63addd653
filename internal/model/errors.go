package model

import "errors"

var (
	ErrUnknownModelType   = errors.New("unknown model type")
	ErrUnsupportedVersion = errors.New("unsupported artifact format version")
	ErrInvalidArtifact    = errors.New("invalid model artifact")
	ErrMissingColumn      = errors.New("missing input column")
	ErrColumnType         = errors.New("input column has wrong type")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrNumeric            = errors.New("numeric instability")
)
