package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>pulseboard API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "pulseboard", "version": "v1.0.0" },
  "paths": {
    "/content/news": {
      "get": {
        "summary": "Headlines by category, or article search when q is set",
        "parameters": [
          {"name":"category","in":"query","schema":{"type":"string","default":"general"}},
          {"name":"q","in":"query","schema":{"type":"string"}},
          {"name":"country","in":"query","schema":{"type":"string","default":"us"}},
          {"name":"pageSize","in":"query","schema":{"type":"integer","default":20}},
          {"name":"page","in":"query","schema":{"type":"integer","default":1}}
        ],
        "responses": { "200": { "description": "news items" }, "400": { "description": "bad paging" }, "429": { "description": "rate limited" } }
      }
    },
    "/content/movies": {
      "get": {
        "summary": "Popular, genre-filtered or searched movies",
        "parameters": [
          {"name":"genre","in":"query","schema":{"type":"string"}},
          {"name":"q","in":"query","schema":{"type":"string"}},
          {"name":"page","in":"query","schema":{"type":"integer","default":1}}
        ],
        "responses": { "200": { "description": "movies" }, "429": { "description": "rate limited" } }
      }
    },
    "/content/social": {
      "get": { "summary": "Social posts, optionally filtered by hashtag", "parameters": [{"name":"hashtag","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "posts" } } }
    },
    "/content/search": {
      "get": {
        "summary": "Unified search across news, movies and social (max 10)",
        "parameters": [
          {"name":"q","in":"query","schema":{"type":"string","minLength":2}},
          {"name":"type","in":"query","schema":{"type":"string","enum":["all","news","movie","movies","social"]}}
        ],
        "responses": { "200": { "description": "search results" } }
      }
    },
    "/auth/register": {
      "post": { "summary": "Create a credentials account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "201": { "description": "user created" }, "400": { "description": "duplicate email or bad input" } } }
    },
    "/auth/login": {
      "post": {
        "summary": "Login with credentials or an OAuth ID token",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"mode":{"type":"string","enum":["credentials","oauth"]},"email":{"type":"string"},"password":{"type":"string"},"id_token":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Invalidate refresh token and revoke the bearer token; all=true ends every session", "requestBody": { "required": false, "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"},"all":{"type":"boolean"}}}}}}, "responses": { "200": { "description": "logged out" }, "401": { "description": "all=true without a valid access or refresh token" } } }
    },
    "/api/user": {
      "get": { "summary": "Current user with preferences", "responses": { "200": { "description": "user" }, "401": { "description": "unauthenticated" } } },
      "patch": { "summary": "Merge preferences", "responses": { "200": { "description": "updated user" } } }
    },
    "/api/user/state": { "get": { "summary": "Full application state", "responses": { "200": { "description": "state" } } } },
    "/api/user/settings": { "patch": { "summary": "Merge notification and display settings", "responses": { "200": { "description": "state" }, "400": { "description": "invalid settings" } } } },
    "/api/user/favorites": {
      "post": { "summary": "Add a favorite", "responses": { "200": { "description": "favorites" } } },
      "delete": { "summary": "Clear all favorites", "responses": { "200": { "description": "favorites" } } }
    },
    "/api/user/favorites/{type}/{id}": { "delete": { "summary": "Remove a favorite", "responses": { "200": { "description": "favorites" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
