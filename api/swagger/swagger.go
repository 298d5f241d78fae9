package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Swim Planner API",
        "description": "Asynchronous class plan generation for swim school instructors",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Class Generations", "description": "Submit and poll class plan generations"},
        {"name": "Settings", "description": "Instructor prompt preferences"}
    ],
    "paths": {
        "/class-generations": {
            "post": {
                "tags": ["Class Generations"],
                "summary": "Start generating a class plan",
                "description": "Records the request and returns its id immediately; poll the status endpoint for the plan.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/GenerateClassRequest"}}
                ],
                "responses": {
                    "200": {"description": "Accepted", "schema": {"$ref": "#/definitions/GenerateClassResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/Failure"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Failure"}},
                    "404": {"description": "Group not found", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/class-generations/{id}": {
            "get": {
                "tags": ["Class Generations"],
                "summary": "Poll a class generation",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Current status", "schema": {"$ref": "#/definitions/GenerationStatusResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/class-generations/{id}/pdf": {
            "get": {
                "tags": ["Class Generations"],
                "summary": "Download a completed plan as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document", "schema": {"type": "file"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Failure"}},
                    "409": {"description": "Generation not completed", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/class-generations/{id}/csv": {
            "get": {
                "tags": ["Class Generations"],
                "summary": "Download a completed plan as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV document", "schema": {"type": "file"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Failure"}},
                    "409": {"description": "Generation not completed", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/settings/prompt": {
            "get": {
                "tags": ["Settings"],
                "summary": "Read my custom prompt",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PromptResponse"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Replace my custom prompt",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdatePromptRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PromptResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateClassRequest": {
            "type": "object",
            "required": ["group_id", "duration"],
            "properties": {
                "group_id": {"type": "integer", "format": "int64"},
                "focus": {"type": "string"},
                "duration": {"type": "integer", "minimum": 15, "maximum": 180},
                "materials": {"type": "array", "items": {"type": "string"}}
            }
        },
        "GenerateClassResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "generationId": {"type": "string", "format": "uuid"},
                "message": {"type": "string"}
            }
        },
        "GenerationStatusResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "status": {"type": "string", "enum": ["pending", "processing", "completed", "failed"]},
                "plan": {"$ref": "#/definitions/ClassPlan"},
                "error": {"type": "string"}
            }
        },
        "ClassPlan": {
            "type": "object",
            "properties": {
                "stages": {"type": "array", "items": {"$ref": "#/definitions/PlanStage"}}
            }
        },
        "PlanStage": {
            "type": "object",
            "properties": {
                "etapa": {"type": "string"},
                "descripcion": {"type": "string"},
                "organizacion": {"type": "string"},
                "material": {"type": "string"},
                "tiempo_minutos": {"type": "number"},
                "intensidad": {"type": "string"}
            }
        },
        "UpdatePromptRequest": {
            "type": "object",
            "properties": {
                "custom_prompt": {"type": "string", "maxLength": 2000}
            }
        },
        "PromptResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "custom_prompt": {"type": "string"}
            }
        },
        "Failure": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "code": {"type": "string"}
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
