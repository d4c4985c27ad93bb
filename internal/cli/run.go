package cli

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/course-events/internal/config"
	"github.com/pfrederiksen/course-events/internal/feed"
	"github.com/pfrederiksen/course-events/internal/logger"
	"github.com/pfrederiksen/course-events/internal/notifier"
	"github.com/pfrederiksen/course-events/internal/scraper"
	"github.com/pfrederiksen/course-events/internal/storage"
)

// runOnce executes one full detection pass: fetch, extract, dedup, persist,
// notify. A fetch or persistence failure returns an error with no files
// mutated beyond what was already durably renamed; notification failures
// never surface here.
func runOnce(cfg *config.Config, n notifier.Notifier) (*OutputResult, error) {
	store, err := storage.Load(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	logger.Debug("loaded known-events store", logger.Fields{
		"state_file": cfg.StateFile,
		"known":      store.Len(),
	})

	sc := scraper.New(cfg.TargetURL, cfg.UserAgent, cfg.Timeout(), scraper.Selectors{
		RegLink: cfg.RegLinkSelector,
		Title:   cfg.TitleSelector,
		Date:    cfg.DateSelector,
	})

	candidates, err := sc.FetchEvents()
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}

	logger.Debug("extracted candidates", logger.Fields{
		"candidates": len(candidates),
	})

	checkedAt := time.Now().UTC()
	newEvents := store.Merge(candidates, checkedAt)

	for _, evt := range newEvents {
		logger.Info("new event detected", logger.Fields{
			"event_id": evt.ID,
			"title":    evt.Title,
			"date":     evt.DateText,
		})
	}

	// Render before writing so an encoding problem mutates nothing
	feedData, err := feed.Render(store, feed.Meta{
		Title:       cfg.FeedTitle,
		Link:        cfg.TargetURL,
		Description: cfg.FeedDescription,
	}, checkedAt)
	if err != nil {
		return nil, fmt.Errorf("rendering feed: %w", err)
	}

	if err := storage.Save(cfg.StateFile, store); err != nil {
		return nil, fmt.Errorf("saving state: %w", err)
	}
	if err := storage.WriteFileAtomic(cfg.FeedFile, feedData); err != nil {
		return nil, fmt.Errorf("writing feed: %w", err)
	}

	// Notifications run last and are best-effort; the store and feed above
	// are already the source of truth for this pass
	if n != nil && len(newEvents) > 0 {
		if err := n.Notify(newEvents); err != nil {
			logger.Warn("notification pass failed", logger.Fields{
				"error": err.Error(),
			})
		}
	}

	return &OutputResult{
		CheckedAt:  checkedAt,
		NewEvents:  newEvents,
		NewCount:   len(newEvents),
		TotalKnown: store.Len(),
	}, nil
}

// buildNotifier selects the notifier for this run, or nil when notifications
// are not configured
func buildNotifier(cfg *config.Config, dryRun bool) (notifier.Notifier, error) {
	if dryRun {
		return notifier.NewDryRunNotifier(), nil
	}
	if cfg.WebhookURL == "" {
		return nil, nil
	}
	return notifier.NewWebhookNotifier(cfg.WebhookURL, cfg.Timeout())
}
