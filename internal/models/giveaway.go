package models

import "strings"

// Collection names and singleton document ids.
const (
	ParticipantsCollection = "participants"
	ProofsCollection       = "proofs"
	AdminDataCollection    = "adminData"
	SocialLinksDocID       = "socialLinks"
	SiteStatsCollection    = "siteStats"
	SiteStatsDocID         = "main"
)

// ParticipantStatus is the admin review state of an entry.
type ParticipantStatus string

const (
	StatusPending  ParticipantStatus = "pending"
	StatusAccepted ParticipantStatus = "accepted"
	StatusRejected ParticipantStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ParticipantStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Participant is a single giveaway entry.
// Timestamp is Unix milliseconds; JoinDate is the human readable date of entry.
type Participant struct {
	ID         string            `json:"id,omitempty"`
	Email      string            `json:"email,omitempty"`
	UserID     string            `json:"userId,omitempty"`
	OfferID    string            `json:"offerId"`
	OfferTitle string            `json:"offerTitle"`
	Prize      string            `json:"prize"`
	Status     ParticipantStatus `json:"status"`
	Verified   bool              `json:"verified"`
	JoinDate   string            `json:"joinDate"`
	Timestamp  int64             `json:"timestamp"`
}

// SocialLinks is the singleton adminData/socialLinks document.
// An empty string means the link is not set.
type SocialLinks struct {
	Telegram  string `json:"telegram"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
}

// SiteStats is the singleton siteStats/main document. The URL and email fields
// are admin overrides; an empty one falls back to its default when a page is
// rendered. The counters are maintained by the stats job.
type SiteStats struct {
	OffersURL            string `json:"offersUrl"`
	WinnersURL           string `json:"winnersUrl"`
	ContactEmail         string `json:"contactEmail"`
	SupportEmail         string `json:"supportEmail"`
	TotalParticipants    int    `json:"totalParticipants"`
	VerifiedParticipants int    `json:"verifiedParticipants"`
	TotalWinners         int    `json:"totalWinners"`
	UpdatedAt            int64  `json:"updatedAt"`
}

// ProofType is the kind of evidence attached to a draw.
type ProofType string

const (
	ProofVideo    ProofType = "video"
	ProofImage    ProofType = "image"
	ProofDocument ProofType = "document"
	ProofUnknown  ProofType = "unknown"
)

// ParseProofType maps free-form input to a ProofType, falling back to ProofUnknown.
func ParseProofType(s string) ProofType {
	switch t := ProofType(strings.ToLower(strings.TrimSpace(s))); t {
	case ProofVideo, ProofImage, ProofDocument:
		return t
	}
	return ProofUnknown
}

// ProofOfDraw links a recorded winner to the evidence of the draw.
type ProofOfDraw struct {
	ID          string    `json:"id,omitempty"`
	Prize       string    `json:"prize"`
	PrizeValue  string    `json:"prizeValue"`
	WinnerEmail string    `json:"winnerEmail"`
	DrawDate    string    `json:"drawDate"`
	ProofType   ProofType `json:"proofType"`
	ProofURL    string    `json:"proofUrl"`
	IsVerified  bool      `json:"isVerified"`
}
