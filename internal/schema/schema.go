// Package schema holds the fixed Request Record shape: field table, explicit
// validation of raw JSON into a typed types.Passenger, the row transformation
// and the label to status table.
package schema

import (
	"survivald/internal/model"
	"survivald/pkg/types"
)

// Kind is the declared type of a field.
type Kind string

const (
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindEnum    Kind = "enum"
)

// Field describes one Request Record field.
type Field struct {
	Name string
	Kind Kind
	Enum []string
}

// Fields lists the Request Record in training schema order.
var Fields = []Field{
	{Name: "Pclass", Kind: KindInteger},
	{Name: "Sex", Kind: KindEnum, Enum: []string{"male", "female"}},
	{Name: "Age", Kind: KindNumber},
	{Name: "SibSp", Kind: KindInteger},
	{Name: "Parch", Kind: KindInteger},
	{Name: "Fare", Kind: KindNumber},
	{Name: "Embarked", Kind: KindEnum, Enum: []string{"C", "Q", "S"}},
}

// Example is a valid record, also served by GET /schema.
var Example = types.Passenger{Pclass: 3, Sex: "male", Age: 28.0, SibSp: 0, Parch: 0, Fare: 10.0, Embarked: "S"}

// Row converts a validated record to the single-row table the predictor
// expects. Column names and order follow Fields.
func Row(p types.Passenger) model.Row {
	r := model.NewRow(len(Fields))
	r.Append("Pclass", p.Pclass)
	r.Append("Sex", p.Sex)
	r.Append("Age", p.Age)
	r.Append("SibSp", p.SibSp)
	r.Append("Parch", p.Parch)
	r.Append("Fare", p.Fare)
	r.Append("Embarked", p.Embarked)
	return r
}

// Specs renders Fields for the HTTP schema endpoint.
func Specs() []types.FieldSpec {
	out := make([]types.FieldSpec, 0, len(Fields))
	for _, f := range Fields {
		out = append(out, types.FieldSpec{Name: f.Name, Type: string(f.Kind), Enum: append([]string(nil), f.Enum...)})
	}
	return out
}
