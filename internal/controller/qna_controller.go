package controller

import (
	"io"

	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQnAController interface {
	RegisterRoutes(r fiber.Router)
	UploadSheet(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type qnaController struct {
	qnaService service.IQnAService
}

func NewQnAController(qnaService service.IQnAService) IQnAController {
	return &qnaController{
		qnaService: qnaService,
	}
}

func (c *qnaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/qna/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("sheet", c.UploadSheet)
	h.Get("status", c.Status)
	h.Delete("sheet", c.Clear)
}

// UploadSheet replaces the whole curated index with the uploaded CSV.
func (c *qnaController) UploadSheet(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.qnaService.UploadSheet(ctx.UserContext(), content)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success refresh qna sheet", res))
}

func (c *qnaController) Status(ctx *fiber.Ctx) error {
	res, err := c.qnaService.Status(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get qna status", res))
}

func (c *qnaController) Clear(ctx *fiber.Ctx) error {
	if err := c.qnaService.Clear(ctx.UserContext()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear qna index", nil))
}
