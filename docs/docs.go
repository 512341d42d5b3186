// Package docs swagger 文档，由 swag init 根据控制器注释生成
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
		"/health": {
			"get": {
				"tags": [
					"系统"
				],
				"summary": "健康检查",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/courses": {
			"get": {
				"tags": [
					"课程"
				],
				"summary": "课程列表",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/courses/search": {
			"get": {
				"tags": [
					"课程"
				],
				"summary": "搜索课程",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "关键字",
						"name": "q",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/courses/{id}": {
			"get": {
				"tags": [
					"课程"
				],
				"summary": "课程详情",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课程ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/courses/{id}/enroll": {
			"post": {
				"tags": [
					"报名"
				],
				"summary": "报名课程",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课程ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "已报名",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"201": {
						"description": "新报名",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/my-courses": {
			"get": {
				"tags": [
					"报名"
				],
				"summary": "我的课程",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/lessons/{lessonId}/complete": {
			"post": {
				"tags": [
					"学习进度"
				],
				"summary": "完成课时",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课程ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "课时ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "未报名",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/progress": {
			"get": {
				"tags": [
					"学习进度"
				],
				"summary": "课程进度",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课程ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "未报名",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/exam/start": {
			"post": {
				"tags": [
					"考试"
				],
				"summary": "开始考试",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课程ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "未报名",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/submit": {
			"post": {
				"tags": [
					"考试"
				],
				"summary": "提交考试",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课程ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "未报名",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"consumes": [
					"application/x-www-form-urlencoded"
				]
			}
		},
		"/courses/{id}/submissions/{submissionId}": {
			"get": {
				"tags": [
					"考试"
				],
				"summary": "考试结果",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课程ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "提交ID",
						"name": "submissionId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/certificate": {
			"post": {
				"tags": [
					"证书"
				],
				"summary": "领取证书",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课程ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "已签发",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"201": {
						"description": "新签发",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "未报名",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"412": {
						"description": "课程未完成",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/instructor/lessons/{lessonId}/video": {
			"post": {
				"tags": [
					"课时"
				],
				"summary": "上传课时视频",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "课时ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					},
					{
						"type": "file",
						"description": "视频文件",
						"name": "file",
						"in": "formData",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"consumes": [
					"multipart/form-data"
				]
			}
		}
	},
	"definitions": {
		"util.Response": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"data": {},
				"message": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"ApiKeyAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "在线课程平台 API",
	Description:      "课程目录、报名、学习进度、考试评分与结业证书",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
