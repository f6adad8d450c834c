package controller

import (
	"github.com/gofiber/fiber/v2"

	"petsc-chat-be/internal/dto"
	"petsc-chat-be/internal/service"
)

type IIndexController interface {
	RegisterRoutes(r fiber.Router)
	Reindex(ctx *fiber.Ctx) error
}

type indexController struct {
	publisher service.IPublisherService
	docsDir   string
}

func NewIndexController(publisher service.IPublisherService, docsDir string) IIndexController {
	return &indexController{
		publisher: publisher,
		docsDir:   docsDir,
	}
}

func (c *indexController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/index")
	h.Post("/reindex", c.Reindex)
}

// Reindex queues a background pass over the configured docs directory.
func (c *indexController) Reindex(ctx *fiber.Ctx) error {
	if err := c.publisher.PublishReindex(c.docsDir); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(dto.ReindexResponse{Status: "reindex queued"})
}
