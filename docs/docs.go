// Package docs holds the Swagger description served at /v1/swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/health": {
            "get": {"tags": ["health"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/cv/n8n-webhook": {
            "post": {"tags": ["cv"], "summary": "Receive a CV from the automation platform",
                "consumes": ["application/json", "multipart/form-data"], "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "413": {"description": "Request Entity Too Large"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Admin login", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/domain.LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Admin logout", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/verify": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Verify the admin session",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/cvs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "List CVs of a segment",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "minScore", "in": "query"},
                    {"type": "string", "name": "sortBy", "in": "query"},
                    {"type": "string", "name": "sortOrder", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}}
        },
        "/cvs/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Get one CV",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Delete one CV",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/cvs/{id}/starred": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Star or unstar a CV",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/cvs/bulk-delete": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Delete several CVs",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/cvs/rejected": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Delete every rejected CV",
                "responses": {"200": {"description": "OK"}}}
        },
        "/cvs/analytics/{segment}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Segment analytics",
                "parameters": [{"type": "string", "name": "segment", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/cvs/export": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Export CVs",
                "parameters": [{"type": "string", "name": "segment", "in": "query"}, {"type": "string", "name": "format", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/cvs/stream": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Live feed of new CVs",
                "produces": ["text/event-stream"], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "domain.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "CV Screening API",
	Description:      "Receives CVs from the automation webhook, scores them against role rules and serves the admin dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
