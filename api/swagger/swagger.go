package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Degree Advisor API",
        "description": "Degree plan validation: course admission checks, plan mutations and graduation audits.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Plans", "description": "Degree plans, admission checks and audits"},
        {"name": "Catalog", "description": "Course catalog and program requirements"},
        {"name": "Exports", "description": "Plan exports and signed downloads"}
    ],
    "paths": {
        "/plans/{studentId}": {
            "get": {
                "tags": ["Plans"],
                "summary": "Show a student's degree plan",
                "parameters": [{"$ref": "#/parameters/StudentID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No plan", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Plans"],
                "summary": "Import or replace a student's degree plan",
                "parameters": [
                    {"$ref": "#/parameters/StudentID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid plan", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{studentId}/admission": {
            "post": {
                "tags": ["Plans"],
                "summary": "Check whether a course can be added to a semester",
                "parameters": [
                    {"$ref": "#/parameters/StudentID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdmissionCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "Decision", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{studentId}/courses": {
            "get": {
                "tags": ["Plans"],
                "summary": "List the plan's courses with their semester",
                "parameters": [{"$ref": "#/parameters/StudentID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Plans"],
                "summary": "Add a course to a semester after an admission check",
                "description": "Rejected additions return 200 with applied=false and the failing rule.",
                "parameters": [
                    {"$ref": "#/parameters/StudentID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Added", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{studentId}/semesters/{semester}/courses/{code}": {
            "delete": {
                "tags": ["Plans"],
                "summary": "Remove a course from a semester",
                "parameters": [
                    {"$ref": "#/parameters/StudentID"},
                    {"name": "semester", "in": "path", "required": true, "type": "integer"},
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Removed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course not in semester", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{studentId}/audit": {
            "get": {
                "tags": ["Plans"],
                "summary": "Audit the full plan against the program requirements",
                "parameters": [{"$ref": "#/parameters/StudentID"}],
                "responses": {
                    "200": {"description": "Audit report; meta.cached tells whether it came from the cache", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Program has no requirement table", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{studentId}/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Export a plan as xlsx, csv or pdf",
                "parameters": [
                    {"$ref": "#/parameters/StudentID"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["xlsx", "csv", "pdf"]}
                ],
                "responses": {
                    "201": {"description": "Export stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a rendered export through its signed token",
                "security": [],
                "produces": ["application/octet-stream"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "File"},
                    "404": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{code}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Look up a catalog course",
                "parameters": [{"name": "code", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown course", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List programs with configured graduation requirements",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs/{program}/requirements": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Show a program's graduation requirements",
                "parameters": [{"name": "program", "in": "path", "required": true, "type": "string", "enum": ["IT", "MSECE", "MS_ECE_AD", "EAI"]}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Program has no requirement table", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "StudentID": {"name": "studentId", "in": "path", "required": true, "type": "string"}
    },
    "definitions": {
        "PlanCoursePayload": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string"},
                "course_name": {"type": "string"},
                "units": {"type": "integer"},
                "semester_availability": {"description": "List of terms or text such as \"['Fall', 'Spring']\""},
                "prerequisites": {"description": "List of codes or free text"},
                "program": {"type": "string"}
            }
        },
        "PlanSemesterPayload": {
            "type": "object",
            "properties": {
                "semester": {"type": "integer", "minimum": 1},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/PlanCoursePayload"}}
            }
        },
        "PlanPayload": {
            "type": "object",
            "required": ["program"],
            "properties": {
                "student_id": {"type": "string"},
                "program": {"type": "string", "enum": ["IT", "MSECE", "MS_ECE_AD", "EAI"]},
                "semesters": {"type": "array", "items": {"$ref": "#/definitions/PlanSemesterPayload"}}
            }
        },
        "AdmissionCheckRequest": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string"},
                "semester": {"type": "integer", "minimum": 1},
                "input": {"type": "string", "example": "18-661 semester 2"}
            }
        },
        "AddCourseRequest": {
            "type": "object",
            "required": ["course_code", "semester"],
            "properties": {
                "course_code": {"type": "string"},
                "semester": {"type": "integer", "minimum": 1}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
