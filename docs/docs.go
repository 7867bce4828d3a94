// Package docs holds the OpenAPI description served under /swagger.
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
		"/register-user": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Register a new user",
				"responses": {
					"201": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/user/login": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Login",
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"429": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/user/logout": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Logout",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/user/changepassword": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Change password",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/user/forgot-password": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Request a password reset code",
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"429": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/user/reset-password": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Verify a password reset code",
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"429": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/user/newpassword": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Reset password",
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"429": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/user-profile/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"profile"
				],
				"summary": "View own profile",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/user-profile/update/{id}": {
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"profile"
				],
				"summary": "Update own profile",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/user/delete/{id}": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"profile"
				],
				"summary": "Delete own account",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/view-users": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "List users",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/view-users/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Get user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/create-user": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Create user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/update-user/{id}": {
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Update user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/delete-user/{id}": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Delete user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/roles": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"roles"
				],
				"summary": "List roles",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/roles/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"roles"
				],
				"summary": "Get role",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/create-roles": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"roles"
				],
				"summary": "Create role",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/update-roles/{id}": {
			"patch": {
				"produces": [
					"application/json"
				],
				"tags": [
					"roles"
				],
				"summary": "Update role",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/delete-roles/{id}": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"roles"
				],
				"summary": "Delete role",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"409": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/roles/{id}/permissions": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"roles"
				],
				"summary": "Assign permissions",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/audit-logs/user": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"audit"
				],
				"summary": "Audit logs by user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/audit-logs/action": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"audit"
				],
				"summary": "Audit logs by action",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"404": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/audit-logs/cleanup": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"audit"
				],
				"summary": "Delete old audit logs",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/admin/audit-logs/paginate": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"audit"
				],
				"summary": "Paginated audit logs",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"400": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"401": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"403": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/health": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"health"
				],
				"summary": "Liveness probe",
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		},
		"/health/ready": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"health"
				],
				"summary": "Readiness probe",
				"responses": {
					"200": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					},
					"503": {
						"description": "",
						"schema": {
							"$ref": "#/definitions/handler.Envelope"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"handler.Envelope": {
			"type": "object",
			"properties": {
				"statusCode": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"data": {},
				"meta": {
					"$ref": "#/definitions/handler.Meta"
				},
				"total": {
					"type": "integer"
				}
			}
		},
		"handler.Meta": {
			"type": "object",
			"properties": {
				"total": {
					"type": "integer"
				},
				"page": {
					"type": "integer"
				},
				"limit": {
					"type": "integer"
				}
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "RBAC API",
	Description:      "Authentication, role-based authorization and audit logging.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
