package controller

import (
	"fmt"
	"io"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/dto"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/apperrors"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/serverutils"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type documentController struct {
	uploadService   service.IUploadService
	documentService service.IDocumentService
}

func NewDocumentController(
	uploadService service.IUploadService,
	documentService service.IDocumentService,
) IDocumentController {
	return &documentController{
		uploadService:   uploadService,
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("upload", c.Upload)
	h.Get("search", c.Search)
	h.Get(":id", c.Status)
	h.Get(":id/download", c.Download)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	uploader, _ := ctx.Locals("uploader").(string)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperrors.NewValidation("multipart field 'file' is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidation("uploaded file could not be opened")
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	if _, err := io.ReadFull(file, content); err != nil {
		return apperrors.NewValidation("uploaded file could not be read")
	}

	cmd := &dto.UploadDocumentCommand{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Uploader:    uploader,
		Content:     content,
	}

	res, err := c.uploadService.Upload(ctx.Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Document accepted for indexing", res))
}

func (c *documentController) Status(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperrors.NewValidation("document id must be a uuid")
	}

	res, err := c.documentService.Status(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document status", res))
}

func (c *documentController) Download(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperrors.NewValidation("document id must be a uuid")
	}

	download, err := c.documentService.Download(ctx.Context(), id)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, download.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", download.Filename))
	return ctx.Send(download.Content)
}

func (c *documentController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	limit := ctx.QueryInt("limit", 20)

	hits, err := c.documentService.Search(ctx.Context(), query, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search documents", hits))
}
