package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"giveaway/internal/docstore"
	"giveaway/internal/models"

	"github.com/google/logger"
)

// ProofService reads and imports proof-of-draw records.
type ProofService struct {
	store DocumentStore
}

// NewProofService creates a ProofService.
func NewProofService(store DocumentStore) *ProofService {
	return &ProofService{store: store}
}

// List returns every proof, most recent draw first.
func (s *ProofService) List(ctx context.Context) ([]models.ProofOfDraw, error) {
	docs, err := s.store.Query(ctx, docstore.Collection(models.ProofsCollection).OrderBy("drawDate", docstore.Desc))
	if err != nil {
		logger.Errorf("Failed to list proofs: %v", err)
		return nil, err
	}

	proofs := make([]models.ProofOfDraw, 0, len(docs))
	for _, doc := range docs {
		var p models.ProofOfDraw
		if err := doc.DataTo(&p); err != nil {
			logger.Warningf("Skipping unreadable proof %s: %v", doc.ID, err)
			continue
		}
		p.ID = doc.ID
		p.ProofType = models.ParseProofType(string(p.ProofType))
		proofs = append(proofs, p)
	}
	return proofs, nil
}

// Add stores one proof.
func (s *ProofService) Add(ctx context.Context, p models.ProofOfDraw) (string, error) {
	p.ProofType = models.ParseProofType(string(p.ProofType))
	data, err := docstore.Encode(p)
	if err != nil {
		return "", err
	}
	return s.store.Add(ctx, models.ProofsCollection, data)
}

// ImportCSV adds one proof per row of
// prize,prizeValue,winnerEmail,drawDate,proofType,proofUrl,isVerified.
// A header row and malformed rows are skipped. Draw dates are stored as
// 2006-01-02 so List can order them. It returns how many were added.
func (s *ProofService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	added := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return added, err
		}

		if len(record) != 7 {
			logger.Infof("Skipping malformed proof CSV record: %v", record)
			continue
		}
		if strings.EqualFold(strings.TrimPrefix(record[0], "\xef\xbb\xbf"), "prize") {
			continue
		}

		verified, err := strconv.ParseBool(strings.TrimSpace(record[6]))
		if err != nil {
			logger.Infof("Skipping proof CSV record with invalid isVerified: %v", record)
			continue
		}
		drawDate, err := ParseDrawDate(record[3])
		if err != nil {
			logger.Infof("Skipping proof CSV record with invalid drawDate: %v", record)
			continue
		}

		_, err = s.Add(ctx, models.ProofOfDraw{
			Prize:       strings.TrimSpace(record[0]),
			PrizeValue:  strings.TrimSpace(record[1]),
			WinnerEmail: strings.TrimSpace(record[2]),
			DrawDate:    drawDate,
			ProofType:   models.ProofType(record[4]),
			ProofURL:    strings.TrimSpace(record[5]),
			IsVerified:  verified,
		})
		if err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// drawDateLayouts are the accepted CSV date forms. Slashed dates are read
// day first.
var drawDateLayouts = []string{
	DrawDateLayout,
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// DrawDateLayout is how draw dates are stored.
const DrawDateLayout = "2006-01-02"

// ParseDrawDate normalizes a draw date to DrawDateLayout.
func ParseDrawDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range drawDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DrawDateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized draw date %q", raw)
}

// MaskEmail hides most of the local part, e.g. alice@x.com -> a***e@x.com.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	local, domain := []rune(email[:at]), email[at:]
	switch len(local) {
	case 1:
		return "*" + domain
	case 2:
		return string(local[0]) + "*" + domain
	}
	return string(local[0]) + "***" + string(local[len(local)-1]) + domain
}
