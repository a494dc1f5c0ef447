// Package docs holds the OpenAPI registration served at /docs.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/fire-detections/report": {
            "post": {
                "tags": ["detections"],
                "summary": "Report a fire or smoke detection",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Rejected"},
                    "500": {"description": "Internal Server Error"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/alerts": {
            "get": {
                "tags": ["alerts"],
                "summary": "List alerts",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/alerts/{id}": {
            "get": {
                "tags": ["alerts"],
                "summary": "Get an alert",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/alerts/{id}/acknowledge": {
            "post": {
                "tags": ["alerts"],
                "summary": "Acknowledge an alert",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/alerts/{id}/resolve": {
            "post": {
                "tags": ["alerts"],
                "summary": "Resolve an alert",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/alerts/{id}/false-alarm": {
            "post": {
                "tags": ["alerts"],
                "summary": "Mark an alert as a false alarm",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/faces/register": {
            "post": {
                "tags": ["faces"],
                "summary": "Register an employee face",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate face"}}
            }
        },
        "/faces/identify": {
            "post": {
                "tags": ["faces"],
                "summary": "Identify a face",
                "responses": {"200": {"description": "OK"}, "422": {"description": "No face detected"}}
            }
        },
        "/occupancy/report": {
            "post": {
                "tags": ["occupancy"],
                "summary": "Report floor occupancy",
                "responses": {"201": {"description": "Created"}, "404": {"description": "Unknown floor"}}
            }
        },
        "/occupancy/floors/{floor_id}/live": {
            "get": {
                "tags": ["occupancy"],
                "summary": "Live floor occupancy",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown floor"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Unhealthy"}}
            }
        },
        "/system/stats": {
            "get": {
                "tags": ["system"],
                "summary": "Get system stats",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/system/circuit-breakers/{service}/reset": {
            "post": {
                "tags": ["system"],
                "summary": "Reset a circuit breaker",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8500",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Firewatch Backend API",
	Description:      "Fire/smoke detection-to-alert pipeline with occupancy correlation and face identification",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
