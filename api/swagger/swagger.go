package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Amar Rokto API",
        "description": "Blood donation coordination backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Accounts and sessions"},
        {"name": "Banks", "description": "Blood bank directory and profiles"},
        {"name": "Moderation", "description": "Pending queue and stock decisions"},
        {"name": "Donations", "description": "Donor scheduling and history"},
        {"name": "Requests", "description": "Recipient blood requests"},
        {"name": "Notifications", "description": "In-app decision notifications"},
        {"name": "Alerts", "description": "Urgent-need alert board"},
        {"name": "Dashboard", "description": "Admin and operator aggregates"},
        {"name": "Exports", "description": "Ledger downloads"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/banks": {
            "get": {
                "tags": ["Banks"],
                "summary": "Search blood banks",
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "city", "in": "query", "type": "string"},
                    {"name": "group", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/banks/{bankId}": {
            "get": {
                "tags": ["Banks"],
                "summary": "Get a blood bank",
                "parameters": [
                    {"name": "bankId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Banks"],
                "summary": "Update a blood bank profile",
                "parameters": [
                    {"name": "bankId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not the owning operator"}
                }
            }
        },
        "/banks/{bankId}/pending": {
            "get": {
                "tags": ["Moderation"],
                "summary": "List pending records",
                "parameters": [
                    {"name": "bankId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Pending donations and requests"},
                    "403": {"description": "Not the owning operator"}
                }
            }
        },
        "/banks/{bankId}/pending/{recordId}/approve": {
            "post": {
                "tags": ["Moderation"],
                "summary": "Approve a pending record",
                "parameters": [
                    {"name": "bankId", "in": "path", "required": true, "type": "string"},
                    {"name": "recordId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Approved"},
                    "409": {"description": "Already resolved or insufficient stock"}
                }
            }
        },
        "/banks/{bankId}/pending/{recordId}/reject": {
            "post": {
                "tags": ["Moderation"],
                "summary": "Reject a pending record",
                "parameters": [
                    {"name": "bankId", "in": "path", "required": true, "type": "string"},
                    {"name": "recordId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rejected"},
                    "409": {"description": "Already resolved"}
                }
            }
        },
        "/banks/{bankId}/stock": {
            "patch": {
                "tags": ["Moderation"],
                "summary": "Adjust stock manually",
                "parameters": [
                    {"name": "bankId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated stock map"},
                    "400": {"description": "Unknown blood group"}
                }
            }
        },
        "/donations": {
            "post": {
                "tags": ["Donations"],
                "summary": "Schedule a donation",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid payload"}
                }
            },
            "get": {
                "tags": ["Donations"],
                "summary": "List my donations",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/donations/stats": {
            "get": {
                "tags": ["Donations"],
                "summary": "Donor dashboard stats",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/requests": {
            "post": {
                "tags": ["Requests"],
                "summary": "Request blood",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid payload"}
                }
            },
            "get": {
                "tags": ["Requests"],
                "summary": "List my blood requests",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List my notifications",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Marked"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/alerts": {
            "get": {
                "tags": ["Alerts"],
                "summary": "Public alert board",
                "parameters": [
                    {"name": "city", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/banks/{bankId}/alerts": {
            "get": {
                "tags": ["Alerts"],
                "summary": "List a bank's alerts",
                "parameters": [
                    {"name": "bankId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Alerts"],
                "summary": "Publish an alert",
                "parameters": [
                    {"name": "bankId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Admin counters",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/low-stock": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Low stock overview",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/banks/{bankId}/exports/{report}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export a bank report",
                "parameters": [
                    {"name": "bankId", "in": "path", "required": true, "type": "string"},
                    {"name": "report", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "role": {"type": "string", "enum": ["USER", "BLOODBANK"]},
                "city": {"type": "string"},
                "blood_group": {"type": "string"},
                "bank_name": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ModerateRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["donation", "blood_request"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
