package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/houzhh15/autopilot/internal/cache"
	"github.com/houzhh15/autopilot/internal/event"
)

// invalidatingEvents 会改变统计结果的事件
var invalidatingEvents = map[event.Type]bool{
	event.TypeLeadCaptured:    true,
	event.TypePostGenerated:   true,
	event.TypeCampaignCreated: true,
	event.TypeCampaignUpdated: true,
	event.TypeCampaignDeleted: true,
	event.TypeReportGenerated: true,
}

// InvalidationHandler 收到相关事件时清除统计缓存
func InvalidationHandler(store cache.Store, logger *zap.Logger) event.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("analytics_invalidator")

	return func(ctx context.Context, evt *event.DomainEvent) error {
		if store == nil || !invalidatingEvents[evt.Type] {
			return nil
		}
		if err := store.InvalidateTag(ctx, CacheTag); err != nil {
			return err
		}
		logger.Debug("Analytics cache invalidated",
			zap.String("event_type", string(evt.Type)),
			zap.String("event_id", evt.ID),
		)
		return nil
	}
}
