//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// SwaggerInfo holds the OpenAPI document served under /swagger/.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "survivald API",
	Description:      "Titanic survival prediction service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the Swagger UI and doc.json.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Service banner",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.MessageResponse"}}}
            }
        },
        "/predict": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Predict survival for one passenger",
                "parameters": [{"description": "Passenger record", "name": "passenger", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.Passenger"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/schema": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Request record schema",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SchemaResponse"}}}
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Service status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        }
    },
    "definitions": {
        "types.Passenger": {
            "type": "object",
            "required": ["Pclass", "Sex", "Age", "SibSp", "Parch", "Fare", "Embarked"],
            "properties": {
                "Pclass": {"type": "integer", "example": 3},
                "Sex": {"type": "string", "enum": ["male", "female"], "example": "male"},
                "Age": {"type": "number", "example": 28},
                "SibSp": {"type": "integer", "example": 0},
                "Parch": {"type": "integer", "example": 0},
                "Fare": {"type": "number", "example": 10},
                "Embarked": {"type": "string", "enum": ["C", "Q", "S"], "example": "S"}
            }
        },
        "types.PredictResponse": {
            "type": "object",
            "properties": {
                "prediction": {"type": "integer"},
                "survival_status": {"type": "string"}
            }
        },
        "types.FieldError": {
            "type": "object",
            "properties": {"field": {"type": "string"}, "reason": {"type": "string"}}
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "integer"},
                "category": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/types.FieldError"}}
            }
        },
        "types.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "types.SchemaResponse": {
            "type": "object",
            "properties": {
                "fields": {"type": "array", "items": {"type": "object"}},
                "example": {"$ref": "#/definitions/types.Passenger"},
                "labels": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "error": {"type": "string"},
                "predictions_total": {"type": "integer"},
                "validation_errors_total": {"type": "integer"},
                "prediction_errors_total": {"type": "integer"},
                "not_ready_total": {"type": "integer"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        }
    }
}`
