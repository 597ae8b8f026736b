package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"pdfcollab/internal/http/middleware"
	"pdfcollab/internal/service"
)

// Services bundles the application services the HTTP layer depends on.
type Services struct {
	Documents service.DocumentService
	Access    service.AccessService
	Comments  service.CommentService
	Proxy     service.ProxyService
}

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness check with no dependencies.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Document management requires a credential; share-link and proxy
// routes accept anonymous callers and authorize per request.
func RegisterRoutes(app *fiber.App, db *sql.DB, verifier middleware.CredentialVerifier, svcs Services) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	docs := app.Group("/documents", requireAuth)
	docs.Post("/", UploadDocument(svcs.Documents))
	docs.Get("/", ListDocuments(svcs.Documents))
	docs.Get("/:id", GetDocument(svcs.Access))
	docs.Delete("/:id", DeleteDocument(svcs.Documents))

	docs.Post("/:id/share", ShareDocument(svcs.Access))
	docs.Post("/:id/share-link", MintShareLink(svcs.Access))
	docs.Post("/:id/invite", InviteEmails(svcs.Access))
	docs.Get("/:id/invited", ListInvited(svcs.Access))
	docs.Delete("/:id/invite/:email", RevokeInvite(svcs.Access))

	docs.Post("/:id/comments", AddComment(svcs.Comments))
	docs.Post("/:id/comments/:commentId/replies", AddReply(svcs.Comments))
	docs.Post("/:id/comments/:commentId/replies/:replyId/replies", AddNestedReply(svcs.Comments))

	// Share-link routes: a valid link is the credential. Viewing still
	// honors a bearer token when one is sent, for the invite check.
	app.Get("/shared/:token", optionalAuth, GetSharedDocument(svcs.Access))
	app.Post("/shared/:token/comments", AddSharedComment(svcs.Comments))
	app.Post("/shared/:token/comments/:commentId/replies", AddSharedReply(svcs.Comments))
	app.Post("/shared/:token/comments/:commentId/replies/:replyId/replies", AddSharedNestedReply(svcs.Comments))

	app.Get("/files/:blobRef", optionalAuth, ProxyFile(svcs.Proxy))
}
