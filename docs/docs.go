// Package docs registers the swagger spec. Regenerate with `swag init`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List all runs",
                "responses": {
                    "200": {"description": "List of runs"},
                    "500": {"description": "Internal server error"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Create a new run",
                "responses": {
                    "200": {"description": "Run created successfully"},
                    "400": {"description": "Invalid request payload"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/runs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Run details"},
                    "404": {"description": "Run not found"}
                }
            }
        },
        "/runs/{id}/tasks": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run tasks",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Task states"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/runs/{id}/errors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run errors",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Run errors"},
                    "500": {"description": "Internal server error"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "ETL Pipeline API",
	Description:      "Trigger and inspect config-driven ETL pipeline runs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
