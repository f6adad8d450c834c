package controller

import (
	"github.com/gofiber/fiber/v2"

	"petsc-chat-be/internal/dto"
	"petsc-chat-be/internal/pkg/serverutils"
	"petsc-chat-be/internal/service"
)

// SessionCookieName is the opaque token tying a browser to its conversation.
const SessionCookieName = "session_id"

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("", c.SendChat)
	h.Get("/history", c.GetHistory)
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendChat(ctx.Context(), ctx.Cookies(SessionCookieName), req.Message)
	if err != nil {
		return err
	}

	// Set on creation and passthrough alike; HttpOnly keeps the token away
	// from scripts, Lax restricts cross-site sending to navigations.
	ctx.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    res.SessionId,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ctx.JSON(dto.SendChatResponse{Reply: res.Reply})
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	res, err := c.service.GetHistory(ctx.Context(), ctx.Cookies(SessionCookieName))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
