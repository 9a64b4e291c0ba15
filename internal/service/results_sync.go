package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"crux/internal/client/ifsc"
	"crux/internal/config"
	"crux/internal/models"
	"crux/internal/repository"
)

// ResultsProvider is the slice of the provider client the sync service needs.
type ResultsProvider interface {
	GetEvent(ctx context.Context, eventID uint64) (*ifsc.EventDocument, []byte, error)
	GetCategoryResult(ctx context.Context, resultURL string) (*ifsc.ResultDocument, []byte, error)
}

// ResultsSyncService pulls authoritative result documents from the provider
// into local storage.
//
// The skip rule makes Sync idempotent: once an AuthoritativeResult exists for
// a (event, category) pair it is never fetched again, even if the category
// status has since changed. A caller that wants retry simply re-invokes Sync.
type ResultsSyncService struct {
	Repo     repository.Repository
	Provider ResultsProvider
	Config   config.ResultsSyncConfig
	Logger   *zap.Logger
}

type SyncResult struct {
	CategoriesProcessed int `json:"categories_processed"`
}

func (s *ResultsSyncService) Sync(ctx context.Context, eventID uint64) (SyncResult, error) {
	if s == nil || s.Repo == nil || s.Provider == nil {
		return SyncResult{}, fmt.Errorf("results sync service not configured")
	}
	if eventID == 0 {
		return SyncResult{}, ErrInvalidEventID
	}

	event, err := s.Repo.GetEvent(ctx, eventID)
	if err != nil {
		return SyncResult{}, err
	}

	// Refresh the event document when we have no local copy, or when any
	// category is still unfinished (statuses and result URLs may have
	// changed since the last sync). With a local copy this is best-effort.
	if event == nil || (s.Config.RefreshUnfinished && event.HasUnfinishedCategory()) {
		refreshed, refreshErr := s.refreshEvent(ctx, eventID)
		switch {
		case refreshErr == nil:
			event = refreshed
		case event == nil:
			return SyncResult{}, &SyncError{EventID: eventID, Err: refreshErr}
		default:
			s.logWarn("event refresh failed, continuing with stored copy", refreshErr, zap.Uint64("event_id", eventID))
		}
	}

	cats, err := event.CategoryList()
	if err != nil {
		return SyncResult{}, &SyncError{EventID: eventID, Err: err}
	}

	processed := 0
	for _, cat := range cats {
		existing, err := s.Repo.GetAuthoritativeResult(ctx, eventID, cat.ID)
		if err != nil {
			return SyncResult{}, err
		}
		if existing != nil {
			processed++
			continue
		}
		if cat.ResultURL == "" {
			continue
		}
		if err := s.fetchCategoryResult(ctx, eventID, cat); err != nil {
			return SyncResult{CategoriesProcessed: processed}, &SyncError{EventID: eventID, Err: err}
		}
		processed++
	}

	return SyncResult{CategoriesProcessed: processed}, nil
}

func (s *ResultsSyncService) refreshEvent(ctx context.Context, eventID uint64) (*models.Event, error) {
	doc, raw, err := s.Provider.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	cats := make([]models.Category, 0, len(doc.Categories))
	for _, c := range doc.Categories {
		cats = append(cats, models.Category{
			ID:        c.ID,
			Name:      c.Name,
			Status:    c.Status,
			ResultURL: c.ResultURL,
		})
	}
	event := &models.Event{
		ID:           doc.ID,
		Name:         doc.Name,
		Location:     doc.Location,
		Season:       doc.Season,
		Status:       doc.Status,
		LastSyncedAt: time.Now().UTC(),
		RawJSON:      datatypes.JSON(raw),
	}
	if err := event.SetCategoryList(cats); err != nil {
		return nil, err
	}
	if err := s.Repo.UpsertEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *ResultsSyncService) fetchCategoryResult(ctx context.Context, eventID uint64, cat models.Category) error {
	doc, raw, err := s.Provider.GetCategoryResult(ctx, cat.ResultURL)
	if err != nil {
		return err
	}
	entries := make([]models.RankedEntry, 0, len(doc.Ranking))
	for _, r := range doc.Ranking {
		entries = append(entries, models.RankedEntry{
			Rank:        r.Rank,
			AthleteID:   r.AthleteID,
			AthleteName: r.AthleteName(),
		})
	}
	item := &models.AuthoritativeResult{
		EventID:      eventID,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Status:       cat.Status,
		FetchedAt:    time.Now().UTC(),
		RawJSON:      datatypes.JSON(raw),
	}
	if err := item.SetRankingList(entries); err != nil {
		return err
	}
	if err := s.Repo.InsertAuthoritativeResult(ctx, item); err != nil {
		return err
	}
	s.logInfo("stored category result",
		zap.Uint64("event_id", eventID),
		zap.Int("category_id", cat.ID),
		zap.String("category", cat.Name),
		zap.Int("entries", len(entries)),
	)
	return nil
}

func (s *ResultsSyncService) logWarn(msg string, err error, fields ...zap.Field) {
	if s == nil || s.Logger == nil {
		return
	}
	s.Logger.Warn(msg, append(fields, zap.Error(err))...)
}

func (s *ResultsSyncService) logInfo(msg string, fields ...zap.Field) {
	if s == nil || s.Logger == nil {
		return
	}
	s.Logger.Info(msg, fields...)
}
