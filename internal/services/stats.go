package services

import (
	"context"
	"time"

	"giveaway/internal/docstore"
	"giveaway/internal/models"
	"giveaway/internal/notify"

	"github.com/google/logger"
)

// DefaultSiteStats holds the values shown when siteStats/main lacks a field.
func DefaultSiteStats() models.SiteStats {
	return models.SiteStats{
		OffersURL:    "/offers",
		WinnersURL:   "/winners",
		ContactEmail: "contact@giveaway.local",
		SupportEmail: "support@giveaway.local",
	}
}

// WithDefaults fills the empty override fields of s from DefaultSiteStats.
// The stored document is left as saved; this is for rendering only.
func WithDefaults(s models.SiteStats) models.SiteStats {
	d := DefaultSiteStats()
	if s.OffersURL == "" {
		s.OffersURL = d.OffersURL
	}
	if s.WinnersURL == "" {
		s.WinnersURL = d.WinnersURL
	}
	if s.ContactEmail == "" {
		s.ContactEmail = d.ContactEmail
	}
	if s.SupportEmail == "" {
		s.SupportEmail = d.SupportEmail
	}
	return s
}

// StatsService owns the siteStats/main singleton.
type StatsService struct {
	*Binding[models.SiteStats]
	store DocumentStore
	now   func() time.Time
}

// NewStatsService creates a StatsService.
func NewStatsService(store DocumentStore, sink notify.Sink) *StatsService {
	return &StatsService{
		Binding: NewBinding(store, models.SiteStatsCollection, models.SiteStatsDocID, DefaultSiteStats(), "site settings", sink),
		store:   store,
		now:     time.Now,
	}
}

// Refresh recounts participants and winners and writes them into the
// singleton, keeping the admin-managed fields it read.
func (s *StatsService) Refresh(ctx context.Context) (models.SiteStats, error) {
	participants, err := s.count(ctx, docstore.Collection(models.ParticipantsCollection))
	if err != nil {
		return models.SiteStats{}, err
	}
	verified, err := s.count(ctx, docstore.Collection(models.ParticipantsCollection).Where("verified", true))
	if err != nil {
		return models.SiteStats{}, err
	}
	winners, err := s.count(ctx, docstore.Collection(models.ProofsCollection))
	if err != nil {
		return models.SiteStats{}, err
	}

	stats, err := s.Load(ctx)
	if err != nil {
		return models.SiteStats{}, err
	}
	stats.TotalParticipants = participants
	stats.VerifiedParticipants = verified
	stats.TotalWinners = winners
	stats.UpdatedAt = s.now().UnixMilli()

	if err := s.Put(ctx, stats); err != nil {
		logger.Errorf("Failed to write site stats: %v", err)
		return models.SiteStats{}, err
	}
	logger.Infof("Site stats refreshed: participants=%d verified=%d winners=%d", participants, verified, winners)
	return stats, nil
}

func (s *StatsService) count(ctx context.Context, q docstore.Query) (int, error) {
	docs, err := s.store.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// NewSocialLinks binds the adminData/socialLinks singleton. Unset links are empty strings.
func NewSocialLinks(store DocumentStore, sink notify.Sink) *Binding[models.SocialLinks] {
	return NewBinding(store, models.AdminDataCollection, models.SocialLinksDocID, models.SocialLinks{}, "social links", sink)
}
