// Package docs is generated by swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ask": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Answer a question from the ingested documents",
                "parameters": [
                    {"description": "Question and retrieval options", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.AskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.AskResponse"}},
                    "400": {"description": "Empty question or invalid max_results", "schema": {"$ref": "#/definitions/api.JobResponse"}},
                    "502": {"description": "Vector store or model unavailable", "schema": {"$ref": "#/definitions/api.JobResponse"}}
                }
            }
        },
        "/ask/simple": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Answer a question with default options",
                "parameters": [
                    {"type": "string", "description": "Question", "name": "question", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SimpleAskResponse"}}
                }
            }
        },
        "/ask/async": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Queue a question job",
                "parameters": [
                    {"description": "Question and retrieval options", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.AskRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/api.InitJobResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.JobResponse"}},
                    "503": {"description": "Queue full", "schema": {"$ref": "#/definitions/api.JobResponse"}}
                }
            }
        },
        "/status/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Job Status"],
                "summary": "Get job status",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.JobResponse"}},
                    "404": {"description": "Job not found", "schema": {"$ref": "#/definitions/api.JobResponse"}}
                }
            }
        },
        "/upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Ingestion"],
                "summary": "Upload and ingest a document",
                "parameters": [
                    {"type": "file", "description": "PDF, DOCX, DOC or TXT file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.UploadResponse"}},
                    "400": {"description": "Unsupported or unreadable file", "schema": {"$ref": "#/definitions/api.JobResponse"}}
                }
            }
        },
        "/upload/async": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Ingestion"],
                "summary": "Queue a document ingestion job",
                "parameters": [
                    {"type": "file", "description": "PDF, DOCX, DOC or TXT file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/api.InitJobResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.JobResponse"}},
                    "503": {"description": "Queue full", "schema": {"$ref": "#/definitions/api.JobResponse"}}
                }
            }
        },
        "/upload/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Stored chunk count",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatsResponse"}}}
            }
        },
        "/upload/list-documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "List ingested documents",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ListDocumentsResponse"}}}
            }
        },
        "/upload/chunks": {
            "delete": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Delete chunks by id",
                "parameters": [
                    {"description": "Chunk ids", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.DeleteChunksRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.MessageResponse"}}}
            }
        },
        "/upload/clear-all": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Delete every stored chunk",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.MessageResponse"}}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Service health",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}}
            }
        }
    },
    "definitions": {
        "api.AskRequest": {
            "type": "object",
            "required": ["question"],
            "properties": {
                "question": {"type": "string", "example": "What is the refund policy?"},
                "max_results": {"type": "integer", "example": 4},
                "use_tools": {"type": "boolean", "example": false},
                "document_id": {"type": "string"},
                "source": {"type": "string", "example": "handbook.pdf"},
                "use_latest": {"type": "boolean", "example": true}
            }
        },
        "api.AskResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "retrieved": {"type": "array", "items": {"$ref": "#/definitions/api.RetrievedChunk"}},
                "tool_calls": {"type": "array", "items": {"type": "object"}},
                "tokens_used": {"type": "integer"}
            }
        },
        "api.RetrievedChunk": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "metadata": {"type": "object"},
                "score": {"type": "number", "example": 0.83}
            }
        },
        "api.SimpleAskResponse": {
            "type": "object",
            "properties": {"answer": {"type": "string"}}
        },
        "api.InitJobResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "status_url": {"type": "string"}}
        },
        "api.JobOutgoingError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "message": {"type": "string", "example": "Job not found"},
                "can_retry": {"type": "boolean", "example": false},
                "kind": {"type": "string", "example": "empty_question"}
            }
        },
        "api.JobResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string", "example": "Query"},
                "result": {"type": "object"},
                "error": {"$ref": "#/definitions/api.JobOutgoingError"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            }
        },
        "api.UploadResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "filename": {"type": "string"},
                "chunks_created": {"type": "integer"},
                "document_id": {"type": "string"}
            }
        },
        "api.StatsResponse": {
            "type": "object",
            "properties": {"total_documents": {"type": "integer"}, "backend": {"type": "string"}}
        },
        "api.ListDocumentsResponse": {
            "type": "object",
            "properties": {
                "total_chunks": {"type": "integer"},
                "unique_documents": {"type": "integer"},
                "documents": {"type": "array", "items": {"type": "object"}}
            }
        },
        "api.DeleteChunksRequest": {
            "type": "object",
            "properties": {"ids": {"type": "array", "items": {"type": "string"}}}
        },
        "api.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "backend": {"type": "string"},
                "embedding": {"type": "string"},
                "llm": {"type": "string"},
                "service": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Document Q&A API",
	Description:      "Upload documents and ask questions answered from their content.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
