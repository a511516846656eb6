package controller

import (
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/logger"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/pkg/serverutils"
	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Summary(ctx *fiber.Ctx) error
	Consistency(ctx *fiber.Ctx) error
	ReconciliationRuns(ctx *fiber.Ctx) error
	RetryFailed(ctx *fiber.Ctx) error
	ReindexMissing(ctx *fiber.Ctx) error
	ReindexAll(ctx *fiber.Ctx) error
	Logs(ctx *fiber.Ctx) error
}

type adminController struct {
	reconcilerService service.IReconcilerService
	logger            logger.ILogger
}

func NewAdminController(
	reconcilerService service.IReconcilerService,
	sysLogger logger.ILogger,
) IAdminController {
	return &adminController{
		reconcilerService: reconcilerService,
		logger:            sysLogger,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("indexing/summary", c.Summary)
	h.Get("indexing/consistency", c.Consistency)
	h.Get("indexing/reconciliation-runs", c.ReconciliationRuns)
	h.Post("indexing/retry-failed", c.RetryFailed)
	h.Post("indexing/reindex-missing", c.ReindexMissing)
	h.Post("indexing/reindex-all", c.ReindexAll)
	h.Get("logs", c.Logs)
}

func (c *adminController) Summary(ctx *fiber.Ctx) error {
	res, err := c.reconcilerService.Summary(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get indexing summary", res))
}

func (c *adminController) Consistency(ctx *fiber.Ctx) error {
	res, err := c.reconcilerService.CheckConsistency(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success check index consistency", res))
}

func (c *adminController) ReconciliationRuns(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	res, err := c.reconcilerService.RecentRuns(ctx.Context(), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get reconciliation runs", res))
}

func (c *adminController) RetryFailed(ctx *fiber.Ctx) error {
	res, err := c.reconcilerService.RetryFailed(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Retry of failed documents triggered", res))
}

func (c *adminController) ReindexMissing(ctx *fiber.Ctx) error {
	res, err := c.reconcilerService.ReindexMissing(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Reindex of missing documents triggered", res))
}

func (c *adminController) ReindexAll(ctx *fiber.Ctx) error {
	res, err := c.reconcilerService.ReindexAll(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Full reindex triggered", res))
}

func (c *adminController) Logs(ctx *fiber.Ctx) error {
	level := ctx.Query("level")
	limit := ctx.QueryInt("limit", 100)
	offset := ctx.QueryInt("offset", 0)

	entries, err := c.logger.GetLogs(level, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get logs", entries))
}
