package tracker

import (
	"context"
	"time"

	"productivity-pal-be/internal/dto"
	"productivity-pal-be/internal/model"
	"productivity-pal-be/internal/pkg/logger"
	"productivity-pal-be/internal/service"
)

// Router dispatches UI messages by kind. Unknown kinds are dropped without a
// reply so older cores keep working with newer UIs.
type Router struct {
	stats    service.IStatsService
	breaks   service.IBreakService
	delivery service.Delivery
	// classify starts an AI classification off the loop.
	classify func(domain string, seq uint64)
	logger   logger.ILogger
}

func NewRouter(
	stats service.IStatsService,
	breaks service.IBreakService,
	delivery service.Delivery,
	classify func(domain string, seq uint64),
	log logger.ILogger,
) *Router {
	return &Router{
		stats:    stats,
		breaks:   breaks,
		delivery: delivery,
		classify: classify,
		logger:   log,
	}
}

func (r *Router) Route(ctx context.Context, channelID string, data []byte, seq uint64, now time.Time) {
	msg, err := dto.DecodeChannelMessage(data)
	if err != nil {
		r.logger.Warn("Router", "Dropping undecodable message", map[string]interface{}{"channel_id": channelID, "error": err.Error()})
		return
	}

	switch msg.Type {
	case dto.KindGetStats:
		r.reply(channelID, r.stats.SendUpdate(channelID))

	case dto.KindUpdateCategory:
		var req dto.UpdateCategoryRequest
		if err := msg.Bind(&req); err != nil {
			r.invalid(channelID, msg.Type, err)
			return
		}
		category, _ := model.ParseCategory(req.Category)
		r.stats.SetCategory(ctx, req.Domain, category, seq, "user")

	case dto.KindRequestAICategorization:
		var req dto.AICategorizationRequest
		if err := msg.Bind(&req); err != nil {
			r.invalid(channelID, msg.Type, err)
			return
		}
		r.classify(req.Domain, seq)

	case dto.KindUpdateBreakSettings:
		var req dto.UpdateBreakSettingsRequest
		if err := msg.Bind(&req); err != nil {
			r.invalid(channelID, msg.Type, err)
			r.reply(channelID, r.delivery.Send(channelID, dto.BreakSettingsUpdatedMessage{
				Type:  dto.KindBreakSettingsUpdated,
				Error: err.Error(),
			}))
			return
		}
		settings := model.BreakSettingsBlob{BreakInterval: req.BreakInterval, BreakDuration: req.BreakDuration}.ToSettings()
		resp := dto.BreakSettingsUpdatedMessage{Type: dto.KindBreakSettingsUpdated, Success: true}
		if err := r.breaks.UpdateSettings(ctx, settings, now); err != nil {
			resp = dto.BreakSettingsUpdatedMessage{Type: dto.KindBreakSettingsUpdated, Error: err.Error()}
		}
		r.reply(channelID, r.delivery.Send(channelID, resp))

	case dto.KindGetBreakStatus:
		r.reply(channelID, r.breaks.SendStatus(channelID))

	case dto.KindStartBreak:
		r.breaks.StartBreak(now)

	case dto.KindEndBreak:
		r.breaks.EndBreak(now)

	case dto.KindPing:
		// keepalive

	default:
		r.logger.Debug("Router", "Ignoring unknown message kind", map[string]interface{}{"channel_id": channelID, "type": msg.Type})
	}
}

func (r *Router) reply(channelID string, err error) {
	if err != nil {
		r.logger.Warn("Router", "Failed to reply", map[string]interface{}{"channel_id": channelID, "error": err.Error()})
	}
}

func (r *Router) invalid(channelID, kind string, err error) {
	r.logger.Warn("Router", "Invalid "+kind+" payload", map[string]interface{}{"channel_id": channelID, "error": err.Error()})
}
