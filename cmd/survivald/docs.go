package main

// General API documentation for swaggo. Regenerate with
// `swag init -g cmd/survivald/docs.go` and refresh the embedded document in
// internal/httpapi/swagger.go.
//
// @title           survivald API
// @version         1.0
// @description     Titanic survival prediction from a model loaded once at startup.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
