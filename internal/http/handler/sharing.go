package handler

import (
	"github.com/gofiber/fiber/v2"

	"pdfcollab/internal/http/middleware"
	"pdfcollab/internal/service"
)

type shareRequest struct {
	UserID string `json:"user_id"`
}

type inviteRequest struct {
	Emails []string `json:"emails"`
}

// ShareDocument grants another registered user persistent view access.
// Owner only; the target never includes the owner itself.
func ShareDocument(access service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req shareRequest
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return writeError(c, fiber.StatusBadRequest, "USER_ID_REQUIRED", "user_id is required")
		}
		doc, err := access.ShareWithUser(c.UserContext(), c.Params("id"), middleware.UserID(c), req.UserID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// MintShareLink generates a public share link for an owned document. A new
// token is minted on every call, invalidating previously distributed links.
func MintShareLink(access service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		link, err := access.MintShareToken(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"link": link})
	}
}

// InviteEmails allowlists email addresses for the document's share link.
// The link is created on first invite and reused afterwards.
func InviteEmails(access service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req inviteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "EMAILS_REQUIRED", "valid email addresses are required")
		}
		res, err := access.InviteEmails(c.UserContext(), c.Params("id"), middleware.UserID(c), req.Emails)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListInvited returns the invite allowlist and shared users of an owned document.
func ListInvited(access service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := access.InvitedUsers(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// RevokeInvite removes an email from the allowlist.
func RevokeInvite(access service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		remaining, err := access.RevokeInvite(c.UserContext(), c.Params("id"), middleware.UserID(c), c.Params("email"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":        true,
			"invited_emails": remaining,
		})
	}
}

// GetSharedDocument resolves link-based access to a document. Without an email
// parameter, link knowledge alone is sufficient; with a non-invited email the
// optional bearer credential must resolve to the owner or a shared user.
func GetSharedDocument(access service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := access.GetByShareToken(c.UserContext(), c.Params("token"), c.Query("email"), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}
