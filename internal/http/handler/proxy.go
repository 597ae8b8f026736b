package handler

import (
	"github.com/gofiber/fiber/v2"

	"pdfcollab/internal/http/middleware"
	"pdfcollab/internal/service"
)

// ProxyFile streams a stored PDF through the server. Access is granted to
// owners and collaborators by credential, or to anyone presenting a valid
// access token in the query string. When the object cannot be delivered
// inline the caller is redirected to a presigned URL instead.
func ProxyFile(svc service.ProxyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		blobRef := c.Params("blobRef")
		res, err := svc.Fetch(c.UserContext(), blobRef, middleware.UserID(c), c.Query("accessToken"))
		if err != nil {
			return writeServiceError(c, err)
		}
		if res.Redirect() {
			return c.Redirect(res.RedirectURL, fiber.StatusFound)
		}
		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderContentDisposition, `inline; filename="document.pdf"`)
		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.Send(res.Data)
	}
}
