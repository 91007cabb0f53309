// Package catalog registers the catalog OpenAPI document with swag under
// the "catalog" instance. Keep it in step with the handler annotations.
package catalog

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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Welcome message",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MessageResponse"}}
                }
            }
        },
        "/admin/books/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List catalog books",
                "parameters": [
                    {"type": "string", "description": "category", "name": "category", "in": "query"},
                    {"type": "string", "description": "publisher", "name": "publisher", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Book"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/echo.HTTPError"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Add a book to the catalog",
                "parameters": [
                    {"description": "book", "name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateBookRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.CreateBookResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/echo.HTTPError"}}
                }
            }
        },
        "/admin/books/borrowed/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["borrowed"],
                "summary": "List the borrow ledger",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.BorrowedBook"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/echo.HTTPError"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["borrowed"],
                "summary": "Record a borrow made through the directory",
                "parameters": [
                    {"description": "borrow", "name": "borrow", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.BorrowRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BorrowResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/echo.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/echo.HTTPError"}}
                }
            }
        },
        "/admin/books/unavailable/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["borrowed"],
                "summary": "List unavailable books",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.BorrowedBook"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/echo.HTTPError"}}
                }
            }
        },
        "/admin/books/{book_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Get a catalog book",
                "parameters": [
                    {"type": "integer", "description": "book id", "name": "book_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Book"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/echo.HTTPError"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Remove a book from the catalog",
                "parameters": [
                    {"type": "integer", "description": "book id", "name": "book_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/echo.HTTPError"}}
                }
            }
        },
        "/admin/users/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users registered in the directory",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/echo.HTTPError"}}
                }
            }
        },
        "/users/": {
            "post": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Echo user fields back without storing them",
                "parameters": [
                    {"type": "string", "description": "email", "name": "email", "in": "query", "required": true},
                    {"type": "string", "description": "first name", "name": "first_name", "in": "query", "required": true},
                    {"type": "string", "description": "last name", "name": "last_name", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.UserEcho"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/echo.HTTPError"}}
                }
            }
        }
    },
    "definitions": {
        "echo.HTTPError": {
            "type": "object",
            "properties": {"message": {}}
        },
        "model.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "publisher": {"type": "string"},
                "category": {"type": "string"},
                "available": {"type": "boolean"}
            }
        },
        "model.BorrowRequest": {
            "type": "object",
            "properties": {
                "book_id": {"type": "integer"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "borrower_name": {"type": "string"},
                "borrowed_until": {"type": "string"}
            }
        },
        "model.BorrowResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "borrowed_book": {"$ref": "#/definitions/model.BorrowedBook"}
            }
        },
        "model.BorrowedBook": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "book_id": {"type": "integer"},
                "borrower_name": {"type": "string"},
                "borrowed_until": {"type": "string"}
            }
        },
        "model.CreateBookRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "publisher": {"type": "string"},
                "category": {"type": "string"}
            }
        },
        "model.CreateBookResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "book": {"$ref": "#/definitions/model.Book"}
            }
        },
        "model.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "model.UserEcho": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library Catalog API",
	Description:      "Admin book catalog and borrow ledger.",
	InfoInstanceName: "catalog",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
