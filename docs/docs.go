// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g server/main.go -o docs
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Create an organizer or turf owner account",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Email already registered"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a token pair",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/turfs/{id}/availability": {
            "get": {
                "tags": ["bookings"],
                "summary": "Thirty-minute slot grid for one day",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "date", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/bookings": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["bookings"],
                "summary": "Request a booking",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Slot taken"}}
            }
        },
        "/bookings/{id}/payments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["payments"],
                "summary": "Reconcile an online payment",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "Idempotency-Key", "in": "header", "maxLength": 100}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid input"}, "402": {"description": "Verification failed"}, "409": {"description": "Invalid or already paid"}}
            }
        },
        "/owner/bookings/{id}/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["owner"],
                "summary": "Cancel a booking on one of your turfs",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Already finalized"}, "422": {"description": "Booking already started"}}
            }
        },
        "/turfs/{id}/ratings": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["ratings"],
                "summary": "Rate a turf for a paid booking",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid rating"}}
            }
        },
        "/admin/sweeps": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Run one expiry sweep now",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Sweep already running"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Turfbook API",
	Description:      "Turf listing, booking, payment and rating service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
