package swagger

import "github.com/swaggo/swag"

// Instance names passed to ginSwagger.InstanceName.
const (
	EnrollmentsInstance = "enrollments"
	CoursesInstance     = "courses"
)

const sharedDefinitions = `
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
        }`

const sharedPaths = `
        "/health": {
            "get": {
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}
            }
        },`

const enrollmentsTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Enrollments API",
        "description": "Enrolls students in courses after confirming both with their owning services",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http"],
    "tags": [
        {"name": "Enrollments", "description": "Student enrollment in courses"}
    ],
    "paths": {` + sharedPaths + `
        "/api/v1/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "description": "Server-sent events by default; a JSON envelope when Accept is application/json.",
                "produces": ["text/event-stream", "application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/EnrollmentResponse"}}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll student in course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed body", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student or course not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Peer service unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments/export": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Export enrollment roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Roster file"},
                    "422": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments/{id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get enrollment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Malformed id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Enrollments"],
                "summary": "Update enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Peer service unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Delete enrollment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Malformed id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "EnrollmentRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "courseId": {"type": "string"},
                "semester": {"type": "string", "example": "FALL"},
                "enrollmentYear": {"type": "integer"}
            }
        },
        "EnrollmentResponse": {
            "type": "object",
            "properties": {
                "enrollmentId": {"type": "string"},
                "studentId": {"type": "string"},
                "courseId": {"type": "string"},
                "semester": {"type": "string"},
                "enrollmentYear": {"type": "integer"}
            }
        },` + sharedDefinitions + `
    }
}`

const coursesTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Courses API",
        "description": "Course catalogue consulted by the enrollment service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http"],
    "tags": [
        {"name": "Courses", "description": "Course catalogue"}
    ],
    "paths": {` + sharedPaths + `
        "/api/v1/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "produces": ["text/event-stream", "application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/CourseResponse"}}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Malformed id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CourseRequest": {
            "type": "object",
            "required": ["courseNumber", "courseName", "numCredits", "numHours"],
            "properties": {
                "courseNumber": {"type": "string"},
                "courseName": {"type": "string"},
                "numCredits": {"type": "number"},
                "numHours": {"type": "integer"},
                "department": {"type": "string"}
            }
        },
        "CourseResponse": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "courseNumber": {"type": "string"},
                "courseName": {"type": "string"},
                "numCredits": {"type": "number"},
                "numHours": {"type": "integer"},
                "department": {"type": "string"}
            }
        },` + sharedDefinitions + `
    }
}`

type swaggerDoc struct {
	template string
}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return s.template
}

func init() {
	swag.Register(EnrollmentsInstance, &swaggerDoc{template: enrollmentsTemplate})
	swag.Register(CoursesInstance, &swaggerDoc{template: coursesTemplate})
}
