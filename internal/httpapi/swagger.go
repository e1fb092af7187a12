//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// swaggerDoc is maintained by hand alongside the routes in server.go.
const swaggerDoc = `{
  "swagger": "2.0",
  "info": {"title": "{{.Title}}", "version": "{{.Version}}", "description": "{{escape .Description}}"},
  "basePath": "{{.BasePath}}",
  "paths": {
    "/status": {"get": {"summary": "Panel, relay and hook status", "produces": ["application/json"],
      "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/StatusResponse"}}}}},
    "/panels/{name}/frame.png": {"get": {"summary": "Newest renderer frame of a panel", "produces": ["image/png"],
      "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
      "responses": {"200": {"description": "PNG"}, "404": {"description": "Unknown panel"}, "409": {"description": "Not ready"}, "503": {"description": "No frame yet"}}}},
    "/screen.png": {"get": {"summary": "Host canvas", "produces": ["image/png"], "responses": {"200": {"description": "PNG"}}}},
    "/panels/{name}/reload": {"post": {"summary": "Navigate the panel to its URL again",
      "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
      "responses": {"202": {"description": "Accepted"}, "404": {"description": "Unknown panel"}, "409": {"description": "Not ready"}}}},
    "/panels/{name}/devtools": {"post": {"summary": "Open developer tools for the panel renderer",
      "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
      "responses": {"202": {"description": "Accepted"}, "404": {"description": "Unknown panel"}, "409": {"description": "Not ready"}}}},
    "/cookies/clear": {"post": {"summary": "Clear renderer cookies", "responses": {"202": {"description": "Accepted"}, "409": {"description": "No ready panel"}}}},
    "/input": {"post": {"summary": "Feed a host input event", "consumes": ["application/json"], "produces": ["application/json"],
      "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/InputResponse"}}, "400": {"description": "Invalid event"}}}},
    "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
    "/readyz": {"get": {"summary": "Readiness", "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
  },
  "definitions": {
    "InputResponse": {"type": "object", "properties": {"captured": {"type": "boolean"}}},
    "StatusResponse": {"type": "object", "properties": {
      "panels": {"type": "array", "items": {"$ref": "#/definitions/PanelStatus"}},
      "relays": {"type": "array", "items": {"type": "string"}},
      "hooks_installed": {"type": "boolean"},
      "uptime_seconds": {"type": "integer"},
      "server_time_unix": {"type": "integer"}}},
    "PanelStatus": {"type": "object", "properties": {
      "name": {"type": "string"}, "state": {"type": "string"}, "url": {"type": "string"},
      "width": {"type": "integer"}, "height": {"type": "integer"},
      "busy": {"type": "boolean"}, "visible": {"type": "boolean"}, "playing": {"type": "boolean"},
      "draws": {"type": "integer"}, "skipped": {"type": "integer"}, "last_message": {"type": "string"}}}
  }
}`

// SwaggerInfo holds the exported API metadata.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Title:            "webvideo API",
	Description:      "Debug and control surface for web panels rendered into the host video layer.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerDoc,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
