// Package docs registers the OpenAPI document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/gws": {
            "get": {
                "produces": ["application/json"],
                "tags": ["gws"],
                "summary": "List giveaways",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/giveaway.Giveaway"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["gws"],
                "summary": "Create a giveaway",
                "parameters": [
                    {"description": "Giveaway", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.createGiveawayReq"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.giveawayResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/gws/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["gws"],
                "summary": "Get giveaway by ID",
                "parameters": [{"type": "string", "description": "Giveaway ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/giveaway.Giveaway"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["gws"],
                "summary": "Correct winner or state",
                "parameters": [
                    {"type": "string", "description": "Giveaway ID", "name": "id", "in": "path", "required": true},
                    {"description": "Patch", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.updateGiveawayReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.giveawayResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/gws/{id}/join": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Requires a wagering platform username and a positive wager in the current period.",
                "produces": ["application/json"],
                "tags": ["gws"],
                "summary": "Join a giveaway",
                "parameters": [{"type": "string", "description": "Giveaway ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.giveawayResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/gws/{id}/draw": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["gws"],
                "summary": "Draw the winner now",
                "parameters": [{"type": "string", "description": "Giveaway ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.drawResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "giveaway.Giveaway": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "endTime": {"type": "string"},
                "state": {"type": "string", "enum": ["active", "complete"]},
                "participants": {"type": "array", "items": {"type": "string"}},
                "totalParticipants": {"type": "integer"},
                "totalEntries": {"type": "integer"},
                "winner": {"type": "string"},
                "version": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"},
                "completedAt": {"type": "string"}
            }
        },
        "http.createGiveawayReq": {
            "type": "object",
            "required": ["endTime", "title"],
            "properties": {"title": {"type": "string"}, "endTime": {"type": "string"}}
        },
        "http.updateGiveawayReq": {
            "type": "object",
            "properties": {"winnerId": {"type": "string"}, "state": {"type": "string", "enum": ["active", "complete"]}}
        },
        "http.giveawayResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "gws": {"$ref": "#/definitions/giveaway.Giveaway"}}
        },
        "http.winnerView": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "username": {"type": "string"}}
        },
        "http.drawResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "winner": {"$ref": "#/definitions/http.winnerView"},
                "gws": {"$ref": "#/definitions/giveaway.Giveaway"}
            }
        },
        "errors.AppError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object"},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"},
                "retryable": {"type": "boolean"}
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"$ref": "#/definitions/errors.AppError"},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"},
                "path": {"type": "string"},
                "method": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "GWS API",
	Description:      "Giveaway lifecycle backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
