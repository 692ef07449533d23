// Package redirect builds the URLs the redirect pages send visitors to.
// Missing parameters become empty strings; nothing is validated.
package redirect

import (
	"net/url"
)

// Params are the query parameters the redirect pages understand.
type Params struct {
	PrizeID   string
	PrizeName string
	Email     string
	Prize     string
	Success   string
}

// FromQuery reads Params from a request query.
func FromQuery(q url.Values) Params {
	return Params{
		PrizeID:   q.Get("prizeId"),
		PrizeName: q.Get("prizeName"),
		Email:     q.Get("email"),
		Prize:     q.Get("prize"),
		Success:   q.Get("success"),
	}
}

// OfferURL appends prizeId, prizeName and email to base, percent-encoded.
// Existing query parameters on base are kept.
func OfferURL(base string, p Params) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("prizeId", p.PrizeID)
	q.Set("prizeName", p.PrizeName)
	q.Set("email", p.Email)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// OffersPath is the in-app verification page for a prize and email.
func OffersPath(prize, email string) string {
	return path("/offers", url.Values{"prize": {prize}, "email": {email}})
}

// ParticipatePath is the in-app entry form preselected to a prize.
func ParticipatePath(prizeID, prizeName string) string {
	return path("/", url.Values{"prizeId": {prizeID}, "prizeName": {prizeName}})
}

// Internal picks the in-app destination for /r: the offers page once the
// external step reported success, the entry form otherwise.
func Internal(p Params) string {
	prize := p.Prize
	if prize == "" {
		prize = p.PrizeName
	}
	if p.Success == "true" || p.Success == "1" {
		return OffersPath(prize, p.Email)
	}
	return ParticipatePath(p.PrizeID, prize)
}

func path(p string, q url.Values) string {
	return (&url.URL{Path: p, RawQuery: q.Encode()}).String()
}
