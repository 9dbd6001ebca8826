package openapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// docsCSP loosens the API-wide policy just enough for Swagger UI served
// from unpkg.
const docsCSP = "default-src 'none'; " +
	"script-src https://unpkg.com 'unsafe-inline'; " +
	"style-src https://unpkg.com 'unsafe-inline'; " +
	"img-src 'self' data: https://unpkg.com; " +
	"connect-src 'self'; frame-ancestors 'none'"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Dental Care API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    body { margin: 0; background: #fafafa; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/openapi.json",
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis],
      layout: "BaseLayout"
    })
  </script>
</body>
</html>`

// RegisterRoutes serves the document at /openapi.json and a Swagger UI
// page at /docs. The document is built once.
func (g *Generator) RegisterRoutes(e *echo.Echo) {
	spec := g.GenerateSpec()
	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, spec)
	})
	e.GET("/docs", func(c echo.Context) error {
		c.Response().Header().Set("Content-Security-Policy", docsCSP)
		return c.HTML(http.StatusOK, swaggerUIHTML)
	})
}
