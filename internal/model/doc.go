// Package model implements the Go-native tabular predictors loaded from
// training artifacts: a preprocessing pipeline (imputation, standardization,
// one-hot encoding) in front of a classifier (decision tree, random forest or
// logistic regression).
//
// A Pipeline is immutable once decoded and safe for concurrent Predict calls.
package model
