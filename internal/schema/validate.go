package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"survivald/pkg/types"
)

// ValidationError reports every offending field of one request.
type ValidationError struct {
	Fields []types.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "request validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the offending fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// DecodePassenger validates a JSON object against Fields and returns the typed
// record. Unknown keys are ignored. On failure the error is a
// *ValidationError naming all offending fields.
func DecodePassenger(payload []byte) (types.Passenger, error) {
	var p types.Passenger
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return p, &ValidationError{Fields: []types.FieldError{{Field: "body", Reason: "must be a JSON object"}}}
	}
	if dec.More() {
		return p, &ValidationError{Fields: []types.FieldError{{Field: "body", Reason: "trailing data after JSON object"}}}
	}

	var errs []types.FieldError
	ints := map[string]*int{"Pclass": &p.Pclass, "SibSp": &p.SibSp, "Parch": &p.Parch}
	floats := map[string]*float64{"Age": &p.Age, "Fare": &p.Fare}
	strs := map[string]*string{"Sex": &p.Sex, "Embarked": &p.Embarked}

	for _, f := range Fields {
		v, ok := raw[f.Name]
		if !ok || isNull(v) {
			errs = append(errs, types.FieldError{Field: f.Name, Reason: "field required"})
			continue
		}
		var reason string
		switch f.Kind {
		case KindInteger:
			reason = decodeInt(v, ints[f.Name])
		case KindNumber:
			reason = decodeFloat(v, floats[f.Name])
		case KindEnum:
			reason = decodeEnum(v, f.Enum, strs[f.Name])
		}
		if reason != "" {
			errs = append(errs, types.FieldError{Field: f.Name, Reason: reason})
		}
	}
	if len(errs) > 0 {
		return types.Passenger{}, &ValidationError{Fields: errs}
	}
	return p, nil
}

// Check validates an already typed record: enum membership and finite
// numbers. Used for records that did not come through DecodePassenger.
func Check(p types.Passenger) error {
	var errs []types.FieldError
	for _, f := range Fields {
		switch f.Name {
		case "Sex", "Embarked":
			v := p.Sex
			if f.Name == "Embarked" {
				v = p.Embarked
			}
			if !contains(f.Enum, v) {
				errs = append(errs, types.FieldError{Field: f.Name, Reason: fmt.Sprintf("value must be one of %s", strings.Join(f.Enum, ", "))})
			}
		case "Age", "Fare":
			v := p.Age
			if f.Name == "Fare" {
				v = p.Fare
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				errs = append(errs, types.FieldError{Field: f.Name, Reason: "value is not a valid number"})
			}
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

func decodeNumber(v json.RawMessage) (json.Number, bool) {
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var n any
	if err := dec.Decode(&n); err != nil {
		return "", false
	}
	num, ok := n.(json.Number)
	return num, ok
}

func decodeInt(v json.RawMessage, dst *int) string {
	num, ok := decodeNumber(v)
	if !ok {
		return "value is not a valid integer"
	}
	if i, err := num.Int64(); err == nil {
		if i < math.MinInt32 || i > math.MaxInt32 {
			return "integer out of range"
		}
		*dst = int(i)
		return ""
	}
	// 3.0 is accepted as an integer, 3.5 is not.
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) {
		return "value is not a valid integer"
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return "integer out of range"
	}
	*dst = int(f)
	return ""
}

func decodeFloat(v json.RawMessage, dst *float64) string {
	num, ok := decodeNumber(v)
	if !ok {
		return "value is not a valid number"
	}
	f, err := num.Float64()
	if err != nil || math.IsInf(f, 0) {
		return "value is not a valid number"
	}
	*dst = f
	return ""
}

func decodeEnum(v json.RawMessage, allowed []string, dst *string) string {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "value is not a valid string"
	}
	if contains(allowed, s) {
		*dst = s
		return ""
	}
	return fmt.Sprintf("value must be one of %s", strings.Join(allowed, ", "))
}
