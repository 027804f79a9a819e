package controller

import (
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/service"
	internalWS "ai-docchat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	hub         *internalWS.Hub
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, hub *internalWS.Hub, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		hub:         hub,
		logger:      log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("send", c.Send)
	h.Post("complete", c.Complete)
	h.Get("ws", c.ServeWs)
	h.Get(":sessionId/history", c.History)
}

// Send publishes the prompt and acks immediately; fragments arrive over the
// session's websocket.
func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendPrompt(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Prompt accepted", res))
}

// Complete answers within the request, for clients that cannot hold a socket.
func (c *chatController) Complete(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Complete(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success complete answer", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session id is required")
	}

	res, err := c.chatService.History(ctx.UserContext(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

// ServeWs upgrades the connection and binds it to the caller's session so
// answer fragments can be pushed as they are generated.
func (c *chatController) ServeWs(ctx *fiber.Ctx) error {
	sessionId := ctx.Query("session_id")
	if sessionId == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing session_id query param"})
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("ChatController", "Starting WebSocket session", map[string]interface{}{"session_id": sessionId})
			internalWS.ServeWs(c.hub, conn, sessionId)
			c.logger.Info("ChatController", "WebSocket session ended", map[string]interface{}{"session_id": sessionId})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
