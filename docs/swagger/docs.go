// Package swagger registers the Docuscribe OpenAPI document with swag.
// Regenerate with `go generate ./docs` after changing handler annotations.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/jackzampolin/docuscribe"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/fetch_doc_content/{doc_id}": {
            "get": {
                "description": "Without parameters returns the document index. start/max_length return one\ncontiguous slice with pagination hints. ranges (\"0-100,400-450\") returns the\nmerged ranges as paragraphs and takes precedence over start/max_length.",
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Fetch document content",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "doc_id", "in": "path", "required": true},
                    {"type": "integer", "description": "First word offset (single-range mode)", "name": "start", "in": "query"},
                    {"type": "integer", "description": "Words to return, capped at 50000 (single-range mode)", "name": "max_length", "in": "query"},
                    {"type": "string", "description": "Comma-separated start-end word ranges (multi-range mode)", "name": "ranges", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/retrieval.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/api/list_all_docs": {
            "get": {
                "description": "List document summaries, most recently updated first",
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List documents",
                "parameters": [
                    {"type": "integer", "default": 100, "description": "Maximum documents to return (1-1000)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Documents to skip", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/endpoints.ListDocsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/endpoints.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Reports whether the document store can serve requests",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/endpoints.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/endpoints.HealthResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Server status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/endpoints.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "endpoints.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "endpoints.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "store": {"type": "string"}}
        },
        "endpoints.Limits": {
            "type": "object",
            "properties": {"default_max_length": {"type": "integer"}, "max_length_cap": {"type": "integer"}}
        },
        "endpoints.ListDocsResponse": {
            "type": "object",
            "properties": {
                "documents": {"type": "array", "items": {"$ref": "#/definitions/types.Summary"}}
            }
        },
        "endpoints.StatusResponse": {
            "type": "object",
            "properties": {
                "retrieval": {"$ref": "#/definitions/endpoints.Limits"},
                "server": {"type": "string"},
                "store": {"$ref": "#/definitions/endpoints.StoreStatus"}
            }
        },
        "endpoints.StoreStatus": {
            "type": "object",
            "properties": {"documents": {"type": "integer"}, "health": {"type": "string"}, "type": {"type": "string"}}
        },
        "retrieval.DocumentView": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "id": {"type": "string"},
                "index": {"type": "boolean"},
                "title": {"type": "string"}
            }
        },
        "retrieval.Response": {
            "type": "object",
            "properties": {
                "document": {"$ref": "#/definitions/retrieval.DocumentView"},
                "meta": {"type": "object"}
            }
        },
        "types.Summary": {
            "type": "object",
            "properties": {
                "hashtags": {"type": "array", "items": {"type": "string"}},
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:9002",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Docuscribe API",
	Description:      "Word-addressed retrieval over large tokenized documents: index, single-range and multi-range fetches.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
