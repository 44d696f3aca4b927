package controller

import (
	"context"

	"productivity-pal-be/internal/dto"
	"productivity-pal-be/internal/pkg/serverutils"
	"productivity-pal-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TrackerReader serves consistent reads of tracker state.
type TrackerReader interface {
	StatsView(ctx context.Context) (dto.StatsUpdateMessage, error)
	BreakView(ctx context.Context) (dto.BreakStatusMessage, error)
}

type ITrackerController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	IngestEvent(ctx *fiber.Ctx) error
	GetStats(ctx *fiber.Ctx) error
	GetBreakStatus(ctx *fiber.Ctx) error
}

type trackerController struct {
	ingest service.IIngestService
	reader TrackerReader
}

func NewTrackerController(ingest service.IIngestService, reader TrackerReader) ITrackerController {
	return &trackerController{ingest: ingest, reader: reader}
}

func (c *trackerController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/events", auth, c.IngestEvent)
	r.Get("/stats", auth, c.GetStats)
	r.Get("/break", auth, c.GetBreakStatus)
}

// IngestEvent accepts a browser event and queues it; it answers before the
// event is applied.
func (c *trackerController) IngestEvent(ctx *fiber.Ctx) error {
	var req dto.BrowserEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.ingest.Publish(ctx.UserContext(), req); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Event accepted", dto.BrowserEventResponse{Status: "queued"}))
}

func (c *trackerController) GetStats(ctx *fiber.Ctx) error {
	res, err := c.reader.StatsView(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(503, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Website stats", res))
}

func (c *trackerController) GetBreakStatus(ctx *fiber.Ctx) error {
	res, err := c.reader.BreakView(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(503, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Break status", res))
}
