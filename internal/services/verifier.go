package services

import (
	"context"
	"strings"

	"giveaway/internal/docstore"
	"giveaway/internal/metrics"
	"giveaway/internal/models"
	"giveaway/internal/notify"

	"github.com/google/logger"
)

// VerificationState is the outcome of an email+prize check.
type VerificationState string

const (
	StateIdle     VerificationState = "idle"
	StateFound    VerificationState = "found"
	StateNotFound VerificationState = "notfound"
)

// Verification is the result of one check.
type Verification struct {
	State       VerificationState   `json:"state"`
	Participant *models.Participant `json:"participant,omitempty"`
}

// Verifier confirms that an entry exists for an email and prize.
type Verifier struct {
	store DocumentStore
	sink  notify.Sink
}

// NewVerifier creates a Verifier.
func NewVerifier(store DocumentStore, sink notify.Sink) *Verifier {
	if sink == nil {
		sink = notify.LogSink{}
	}
	return &Verifier{store: store, sink: sink}
}

// Check starts from idle, looks up the newest participant with this email and
// prize, and marks it verified. With no match the state is notfound and nothing
// is written. On a store failure the state stays idle and the error is reported
// and returned.
//
// Uniqueness of (email, prize) is not enforced; the newest match wins.
func (v *Verifier) Check(ctx context.Context, email, prize string) (Verification, error) {
	result := Verification{State: StateIdle}

	email = strings.TrimSpace(email)
	prize = strings.TrimSpace(prize)
	if email == "" || prize == "" {
		return result, ErrInvalidEntry
	}

	docs, err := v.store.Query(ctx, docstore.Collection(models.ParticipantsCollection).
		Where("email", email).
		Where("prize", prize).
		OrderBy("timestamp", docstore.Desc).
		Limit(1))
	if err != nil {
		return result, v.fail("lookup", email, err)
	}

	if len(docs) == 0 {
		result.State = StateNotFound
		metrics.VerificationChecks.WithLabelValues(string(StateNotFound)).Inc()
		return result, nil
	}

	p, err := participantFromDoc(docs[0])
	if err != nil {
		return result, v.fail("decode", email, err)
	}

	if err := v.store.Update(ctx, models.ParticipantsCollection, p.ID, map[string]any{"verified": true}); err != nil {
		return result, v.fail("update", email, err)
	}
	p.Verified = true

	result.State = StateFound
	result.Participant = p
	metrics.VerificationChecks.WithLabelValues(string(StateFound)).Inc()
	v.sink.Notify(notify.Ok("Participation verified"))
	return result, nil
}

func (v *Verifier) fail(step, email string, err error) error {
	logger.Errorf("Verification %s failed for %s: %v", step, email, err)
	metrics.VerificationChecks.WithLabelValues("error").Inc()
	v.sink.Notify(notify.Fail("Verification is unavailable, please try again"))
	return err
}
