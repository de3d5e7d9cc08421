// Package docs registers the OpenAPI document served at /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/exchanges": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["exchange"],
                "summary": "List exchange transactions",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "post": {
                "tags": ["exchange"],
                "summary": "Create an exchange transaction",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/exchanges/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["exchange"],
                "summary": "Get an exchange by database id",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/exchanges/transaction/{transactionId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["exchange"],
                "summary": "Get an exchange by provider transaction id",
                "parameters": [{"name": "transactionId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/exchanges/{transactionId}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["exchange"],
                "summary": "Refresh an exchange's status from the provider",
                "parameters": [{"name": "transactionId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/exchanges/currencies": {
            "get": {
                "tags": ["catalog"],
                "summary": "List available currencies",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/exchanges/enhanced-pairs": {
            "get": {
                "tags": ["catalog"],
                "summary": "List tradable pairs with display metadata",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/exchanges/estimate": {
            "get": {
                "tags": ["catalog"],
                "summary": "Estimate a conversion",
                "parameters": [
                    {"name": "fromCurrency", "in": "query", "required": true, "type": "string"},
                    {"name": "toCurrency", "in": "query", "required": true, "type": "string"},
                    {"name": "fromAmount", "in": "query", "type": "string"},
                    {"name": "flow", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/exchanges/min-amount": {
            "get": {
                "tags": ["catalog"],
                "summary": "Get the minimum exchangeable amount for a pair",
                "parameters": [
                    {"name": "fromCurrency", "in": "query", "required": true, "type": "string"},
                    {"name": "toCurrency", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/exchanges/fetch-currencies": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Sync the currency catalog from the provider",
                "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/exchanges/fetch-pairs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Sync the full catalog from the provider",
                "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/users/login": {
            "post": {
                "tags": ["user"],
                "summary": "Authenticate and receive a bearer token",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Get the authenticated account",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/service-fees/active": {
            "get": {
                "tags": ["fees"],
                "summary": "Get the currently active service fee",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/service-fees": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["fees"],
                "summary": "List all service fees",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["fees"],
                "summary": "Create a service fee",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/faqs": {
            "get": {
                "tags": ["faq"],
                "summary": "List active FAQ entries in display order",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["faq"],
                "summary": "Create an FAQ entry",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "BlockHaven Exchange API",
	Description:      "Cryptocurrency exchange broker backend",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
