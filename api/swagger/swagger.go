package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Console Gateway",
        "description": "Dashboard context, filters and page views of the school admin console",
        "version": "1.0.0"
    },
    "basePath": "/console",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "ConsoleSession": {"type": "apiKey", "name": "X-Console-Session", "in": "header"}
    },
    "tags": [
        {"name": "Console", "description": "Console sign-in and sign-out"},
        {"name": "Dashboard", "description": "Dashboard context, filters, refetch and exports"},
        {"name": "Pages", "description": "Page views derived from the dashboard context"},
        {"name": "Entities", "description": "Create, update and delete school entities"},
        {"name": "Audit", "description": "Console audit trail"}
    ],
    "paths": {
        "/sessions": {
            "post": {
                "tags": ["Console"],
                "summary": "Open a console session",
                "parameters": [{"in": "body", "name": "payload", "schema": {"$ref": "#/definitions/OpenSessionRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Token expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/current": {
            "get": {"tags": ["Console"], "summary": "Describe the current session", "security": [{"ConsoleSession": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Console"], "summary": "Sign out", "security": [{"ConsoleSession": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/dashboard/context": {
            "get": {"tags": ["Dashboard"], "summary": "Dashboard context snapshot", "security": [{"ConsoleSession": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard/filters": {
            "patch": {
                "tags": ["Dashboard"],
                "summary": "Update dashboard filters",
                "security": [{"ConsoleSession": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/FilterPatch"}}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {"tags": ["Dashboard"], "summary": "Clear all dashboard filters", "security": [{"ConsoleSession": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard/refetch": {
            "post": {
                "tags": ["Dashboard"],
                "summary": "Refetch dashboard data",
                "security": [{"ConsoleSession": []}],
                "parameters": [{"in": "body", "name": "payload", "schema": {"$ref": "#/definitions/RefetchRequest"}}],
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/dashboard/display-names": {
            "get": {"tags": ["Dashboard"], "summary": "Filter display names", "security": [{"ConsoleSession": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard/events": {
            "get": {"tags": ["Dashboard"], "summary": "Stream dashboard snapshots", "produces": ["text/event-stream"], "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard/export": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Export dashboard data",
                "security": [{"ConsoleSession": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "report", "type": "string", "required": true, "enum": ["fees", "students", "questions"]},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/pages/questions": {
            "get": {"tags": ["Pages"], "summary": "Questions page", "security": [{"ConsoleSession": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/pages/questions/page": {
            "put": {
                "tags": ["Pages"],
                "summary": "Move the questions listing to another page",
                "security": [{"ConsoleSession": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/PageRequest"}}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pages/classes": {
            "get": {
                "tags": ["Pages"],
                "summary": "Classes page",
                "security": [{"ConsoleSession": []}],
                "parameters": [
                    {"in": "query", "name": "sessionId", "type": "string"},
                    {"in": "query", "name": "search", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pages/classes/{classId}/students": {
            "get": {
                "tags": ["Pages"],
                "summary": "Students of one class",
                "security": [{"ConsoleSession": []}],
                "parameters": [
                    {"in": "path", "name": "classId", "type": "string", "required": true},
                    {"in": "query", "name": "sessionId", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pages/students": {
            "get": {
                "tags": ["Pages"],
                "summary": "All students page",
                "security": [{"ConsoleSession": []}],
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "pageSize", "type": "integer"},
                    {"in": "query", "name": "search", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pages/subjects": {
            "get": {"tags": ["Pages"], "summary": "Subjects page", "security": [{"ConsoleSession": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/pages/sessions": {
            "get": {"tags": ["Pages"], "summary": "Academic sessions page", "security": [{"ConsoleSession": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/pages/dashboard": {
            "get": {"tags": ["Pages"], "summary": "Landing dashboard page", "security": [{"ConsoleSession": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/{resource}": {
            "post": {
                "tags": ["Entities"],
                "summary": "Create or update a question, class, student, subject or academic session",
                "security": [{"ConsoleSession": []}],
                "parameters": [{"in": "path", "name": "resource", "type": "string", "required": true, "enum": ["questions", "classes", "students", "subjects", "sessions-admin"]}],
                "responses": {"200": {"description": "Updated"}, "201": {"description": "Created"}, "400": {"description": "Missing required fields"}}
            }
        },
        "/{resource}/{id}": {
            "delete": {
                "tags": ["Entities"],
                "summary": "Delete an entity",
                "security": [{"ConsoleSession": []}],
                "parameters": [
                    {"in": "path", "name": "resource", "type": "string", "required": true, "enum": ["questions", "classes", "students", "subjects", "sessions-admin"]},
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/audit": {
            "get": {"tags": ["Audit"], "summary": "List console audit records", "security": [{"ConsoleSession": []}], "responses": {"200": {"description": "OK"}, "503": {"description": "Audit disabled"}}}
        }
    },
    "definitions": {
        "OpenSessionRequest": {
            "type": "object",
            "required": ["token"],
            "properties": {"token": {"type": "string"}}
        },
        "FilterPatch": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "termId": {"type": "string"},
                "classId": {"type": "string"},
                "questionType": {"type": "string"},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"}
            }
        },
        "RefetchRequest": {
            "type": "object",
            "properties": {"overrides": {"$ref": "#/definitions/FilterPatch"}}
        },
        "PageRequest": {
            "type": "object",
            "required": ["page"],
            "properties": {"page": {"type": "integer", "minimum": 1}}
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
