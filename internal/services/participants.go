package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"giveaway/internal/docstore"
	"giveaway/internal/models"
	"giveaway/internal/notify"

	"github.com/google/logger"
	"github.com/samber/lo"
)

// Entry is what a visitor submits to take part in a giveaway.
type Entry struct {
	Email      string `json:"email"`
	UserID     string `json:"userId"`
	OfferID    string `json:"offerId"`
	OfferTitle string `json:"offerTitle"`
	Prize      string `json:"prize"`
}

// Filter narrows a participant listing. Empty fields do not filter.
type Filter struct {
	Email   string
	Prize   string
	OfferID string
	Status  models.ParticipantStatus
}

func (f Filter) query() docstore.Query {
	q := docstore.Collection(models.ParticipantsCollection)
	if f.Email != "" {
		q = q.Where("email", f.Email)
	}
	if f.Prize != "" {
		q = q.Where("prize", f.Prize)
	}
	if f.OfferID != "" {
		q = q.Where("offerId", f.OfferID)
	}
	if f.Status != "" {
		q = q.Where("status", string(f.Status))
	}
	return q.OrderBy("timestamp", docstore.Desc)
}

// Confirmer is asked before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// ParticipantService manages the participants collection.
type ParticipantService struct {
	store DocumentStore
	sink  notify.Sink
	now   func() time.Time
}

// NewParticipantService creates a ParticipantService.
func NewParticipantService(store DocumentStore, sink notify.Sink) *ParticipantService {
	if sink == nil {
		sink = notify.LogSink{}
	}
	return &ParticipantService{store: store, sink: sink, now: time.Now}
}

// Create records a new pending entry and returns it with its id.
func (s *ParticipantService) Create(ctx context.Context, e Entry) (*models.Participant, error) {
	e.Email = strings.TrimSpace(e.Email)
	e.Prize = strings.TrimSpace(e.Prize)
	if e.Prize == "" || (e.Email == "" && e.UserID == "") {
		return nil, ErrInvalidEntry
	}

	now := s.now()
	p := &models.Participant{
		Email:      e.Email,
		UserID:     e.UserID,
		OfferID:    e.OfferID,
		OfferTitle: e.OfferTitle,
		Prize:      e.Prize,
		Status:     models.StatusPending,
		JoinDate:   now.Format("2006-01-02"),
		Timestamp:  now.UnixMilli(),
	}
	data, err := docstore.Encode(p)
	if err != nil {
		return nil, err
	}

	id, err := s.store.Add(ctx, models.ParticipantsCollection, data)
	if err != nil {
		logger.Errorf("Failed to add participant for prize %s: %v", e.Prize, err)
		return nil, err
	}
	p.ID = id
	logger.Infof("New participant %s for prize %s", id, p.Prize)
	return p, nil
}

// Get returns one participant.
func (s *ParticipantService) Get(ctx context.Context, id string) (*models.Participant, error) {
	doc, err := s.store.Get(ctx, models.ParticipantsCollection, id)
	if err != nil {
		return nil, err
	}
	return participantFromDoc(doc)
}

// List runs a one-shot query, newest first. Callers re-run it after mutations.
func (s *ParticipantService) List(ctx context.Context, f Filter) ([]models.Participant, error) {
	docs, err := s.store.Query(ctx, f.query())
	if err != nil {
		logger.Errorf("Failed to list participants: %v", err)
		return nil, err
	}
	return participantsFromDocs(docs), nil
}

// Watch pushes the filtered list, newest first, to fn on every change until
// the returned subscription is closed.
func (s *ParticipantService) Watch(f Filter, fn func([]models.Participant)) (*docstore.Subscription, error) {
	return s.store.Subscribe(f.query(), func(docs []docstore.Document) {
		fn(participantsFromDocs(docs))
	})
}

// UpdateStatus patches only the status field.
func (s *ParticipantService) UpdateStatus(ctx context.Context, id string, status models.ParticipantStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	err := s.store.Update(ctx, models.ParticipantsCollection, id, map[string]any{"status": string(status)})
	if err != nil {
		logger.Errorf("Failed to update status of %s: %v", id, err)
		s.sink.Notify(notify.Fail("Could not update participant status"))
		return err
	}
	s.sink.Notify(notify.Ok(fmt.Sprintf("Participant marked %s", status)))
	return nil
}

// Delete removes a participant after confirm agrees. A declined confirmation
// returns ErrNotConfirmed and leaves the store untouched.
func (s *ParticipantService) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(ctx, fmt.Sprintf("Delete participant %s?", id)) {
		return ErrNotConfirmed
	}

	if err := s.store.Delete(ctx, models.ParticipantsCollection, id); err != nil {
		logger.Errorf("Failed to delete participant %s: %v", id, err)
		s.sink.Notify(notify.Fail("Could not delete participant"))
		return err
	}
	s.sink.Notify(notify.Ok("Participant deleted"))
	return nil
}

// PrizeNames lists the distinct prizes people entered for, most recent first.
func (s *ParticipantService) PrizeNames(ctx context.Context) ([]string, error) {
	participants, err := s.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	names := lo.Map(participants, func(p models.Participant, _ int) string { return p.Prize })
	return lo.Uniq(lo.Compact(names)), nil
}

// ExportCSV writes every participant as CSV.
func (s *ParticipantService) ExportCSV(ctx context.Context, w io.Writer) error {
	participants, err := s.List(ctx, Filter{})
	if err != nil {
		return err
	}

	// BOM so spreadsheet tools read the file as UTF-8
	if _, err := w.Write([]byte("\xef\xbb\xbf")); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "email", "userId", "offerId", "offerTitle", "prize", "status", "verified", "joinDate"}); err != nil {
		return err
	}
	for _, p := range participants {
		row := []string{p.ID, p.Email, p.UserID, p.OfferID, p.OfferTitle, p.Prize, string(p.Status), strconv.FormatBool(p.Verified), p.JoinDate}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Count returns how many participants match f.
func (s *ParticipantService) Count(ctx context.Context, f Filter) (int, error) {
	docs, err := s.store.Query(ctx, f.query())
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func participantFromDoc(doc docstore.Document) (*models.Participant, error) {
	var p models.Participant
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	p.ID = doc.ID
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	return &p, nil
}

func participantsFromDocs(docs []docstore.Document) []models.Participant {
	out := make([]models.Participant, 0, len(docs))
	for _, doc := range docs {
		p, err := participantFromDoc(doc)
		if err != nil {
			logger.Warningf("Skipping unreadable participant %s: %v", doc.ID, err)
			continue
		}
		out = append(out, *p)
	}
	return out
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}
