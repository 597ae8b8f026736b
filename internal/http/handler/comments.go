package handler

import (
	"github.com/gofiber/fiber/v2"

	"pdfcollab/internal/http/middleware"
	"pdfcollab/internal/service"
)

type commentRequest struct {
	Text      string `json:"text"`
	GuestName string `json:"guest_name"`
}

// AddComment appends a top-level comment as the authenticated caller.
func AddComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req commentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "TEXT_REQUIRED", "comment text is required")
		}
		doc, err := svc.AddComment(c.UserContext(), c.Params("id"), middleware.UserID(c), req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// AddReply appends a reply under a top-level comment.
func AddReply(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req commentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "TEXT_REQUIRED", "comment text is required")
		}
		doc, err := svc.AddReply(c.UserContext(), c.Params("id"), c.Params("commentId"), middleware.UserID(c), req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// AddNestedReply appends a third-tier reply under an existing reply.
// There is no deeper tier: no route addresses one.
func AddNestedReply(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req commentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "TEXT_REQUIRED", "comment text is required")
		}
		doc, err := svc.AddNestedReply(c.UserContext(), c.Params("id"), c.Params("commentId"), c.Params("replyId"), middleware.UserID(c), req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// AddSharedComment appends a guest comment through a share link.
func AddSharedComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req commentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "TEXT_REQUIRED", "comment text is required")
		}
		doc, err := svc.AddSharedComment(c.UserContext(), c.Params("token"), req.GuestName, req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// AddSharedReply appends a guest reply through a share link.
func AddSharedReply(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req commentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "TEXT_REQUIRED", "comment text is required")
		}
		doc, err := svc.AddSharedReply(c.UserContext(), c.Params("token"), c.Params("commentId"), req.GuestName, req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// AddSharedNestedReply appends a guest third-tier reply through a share link.
func AddSharedNestedReply(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req commentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "TEXT_REQUIRED", "comment text is required")
		}
		doc, err := svc.AddSharedNestedReply(c.UserContext(), c.Params("token"), c.Params("commentId"), c.Params("replyId"), req.GuestName, req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}
