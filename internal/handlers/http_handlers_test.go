package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"giveaway/internal/docstore"
	"giveaway/internal/models"
	"giveaway/internal/notify"
	"giveaway/internal/offerapi"
	"giveaway/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminUser = "admin"
	testAdminPass = "secret"
	testOfferBase = "https://partner.example.com/claim"
)

type testApp struct {
	router  *gin.Engine
	handler *HTTPHandler
	store   *docstore.Store
	toasts  *notify.Recorder
}

func newTestApp(t *testing.T, offerAPI string) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := docstore.Open(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	templates, err := ParseTemplates()
	require.NoError(t, err)

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	toasts := &notify.Recorder{}
	sink := notify.Multi{toasts, hub}

	h := NewHTTPHandler(Deps{
		Participants:    services.NewParticipantService(store, sink),
		Verifier:        services.NewVerifier(store, sink),
		Proofs:          services.NewProofService(store),
		Stats:           services.NewStatsService(store, sink),
		SocialLinks:     services.NewSocialLinks(store, sink),
		Modals:          services.NewSuccessModals(time.Hour),
		Offers:          offerapi.NewClient(offerAPI, time.Second),
		Hub:             hub,
		Templates:       templates,
		RedirectBaseURL: testOfferBase,
		DefaultLanguage: "en",
	})

	r := gin.New()
	h.RegisterPublicRoutes(r)
	admin := r.Group("/admin", h.AdminMiddleware(testAdminUser, testAdminPass))
	h.RegisterAdminRoutes(admin)

	return &testApp{router: r, handler: h, store: store, toasts: toasts}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) admin(req *http.Request) *httptest.ResponseRecorder {
	req.SetBasicAuth(testAdminUser, testAdminPass)
	return a.do(req)
}

func jsonRequest(method, target string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (a *testApp) participate(t *testing.T, email, prize string) *models.Participant {
	t.Helper()
	p, err := a.handler.Participants.Create(context.Background(), services.Entry{Email: email, Prize: prize})
	require.NoError(t, err)
	return p
}

func TestParticipateFormRedirectsToSuccessModal(t *testing.T) {
	app := newTestApp(t, "")

	w := app.do(formRequest("/participate", url.Values{
		"email":   {"a@x.com"},
		"prize":   {"Gold Watch"},
		"prizeId": {"p1"},
	}))

	require.Equal(t, http.StatusSeeOther, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/success/"), loc)

	session, err := app.handler.Modals.Get(strings.TrimPrefix(loc, "/success/"))
	require.NoError(t, err)
	assert.Equal(t, "Gold Watch", session.Prize)
	assert.Equal(t, testOfferBase+"?email=a%40x.com&prizeId=p1&prizeName=Gold+Watch", session.ContinueURL)

	list, err := app.handler.Participants.List(context.Background(), services.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusPending, list[0].Status)
	assert.Equal(t, session.ParticipantID, list[0].ID)
}

func TestParticipateRejectsMissingPrize(t *testing.T) {
	app := newTestApp(t, "")

	w := app.do(jsonRequest(http.MethodPost, "/participate", gin.H{"email": "a@x.com"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(formRequest("/participate", url.Values{"email": {"a@x.com"}, "prizeId": {"p1"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=entry.invalid")

	assert.Equal(t, 0, app.handler.Modals.Len())
}

func TestParticipatePushesOffer(t *testing.T) {
	var got offerapi.AddOfferRequest
	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/add-offer", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(offerapi.AddOfferResponse{Success: true})
	}))
	defer partner.Close()

	app := newTestApp(t, partner.URL)
	w := app.do(jsonRequest(http.MethodPost, "/participate", gin.H{
		"email":      "a@x.com",
		"prize":      "Gold Watch",
		"prizeId":    "p1",
		"offerId":    "o9",
		"offerTitle": "Spring",
	}))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, offerapi.AddOfferRequest{OfferID: "o9", PrizeID: "p1"}, got)

	var body struct {
		SessionID   string             `json:"sessionId"`
		Participant models.Participant `json:"participant"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.SessionID)
	assert.Equal(t, "o9", body.Participant.OfferID)
}

func TestParticipateSurvivesPartnerFailure(t *testing.T) {
	partner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer partner.Close()

	app := newTestApp(t, partner.URL)
	w := app.do(jsonRequest(http.MethodPost, "/participate", gin.H{
		"email": "a@x.com", "prize": "Gold Watch", "offerId": "o9",
	}))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSuccessModalContinue(t *testing.T) {
	app := newTestApp(t, "")
	session := app.handler.Modals.Open("p1", "Gold Watch", "/offers?prize=Gold+Watch")

	w := app.do(httptest.NewRequest(http.MethodGet, "/success/"+session.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gold Watch")

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/success/"+session.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"state":"visible","continueUrl":"/offers?prize=Gold+Watch"}`, w.Body.String())

	w = app.do(httptest.NewRequest(http.MethodPost, "/success/"+session.ID+"/continue", nil))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/offers?prize=Gold+Watch", w.Header().Get("Location"))
	assert.Equal(t, services.ModalClosed, session.Countdown.State())
	assert.Equal(t, "manual", session.Countdown.Trigger())
	assert.Equal(t, 0, app.handler.Modals.Len())

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/success/"+session.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerify(t *testing.T) {
	app := newTestApp(t, "")
	p := app.participate(t, "a@x.com", "Gold Watch")

	w := app.do(jsonRequest(http.MethodPost, "/api/verify", gin.H{"email": "a@x.com", "prize": "Gold Watch"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"found"`)

	stored, err := app.handler.Participants.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Verified)

	w = app.do(jsonRequest(http.MethodPost, "/api/verify", gin.H{"email": "b@x.com", "prize": "Gold Watch"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"notfound"`)

	w = app.do(jsonRequest(http.MethodPost, "/api/verify", gin.H{"email": " ", "prize": "Gold Watch"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyMessageFollowsLanguage(t *testing.T) {
	app := newTestApp(t, "")

	req := jsonRequest(http.MethodPost, "/api/verify", gin.H{"email": "b@x.com", "prize": "Gold Watch"})
	req.AddCookie(&http.Cookie{Name: "language", Value: "fr"})
	w := app.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Aucune participation")
}

func TestRedirects(t *testing.T) {
	app := newTestApp(t, "")

	w := app.do(httptest.NewRequest(http.MethodGet, "/go?prizeId=p1&prizeName=Gold+Watch&email=a+b%40x.com", nil))
	require.Equal(t, http.StatusFound, w.Code)
	target, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "partner.example.com", target.Host)
	assert.Equal(t, "Gold Watch", target.Query().Get("prizeName"))
	assert.Equal(t, "a b@x.com", target.Query().Get("email"))

	w = app.do(httptest.NewRequest(http.MethodGet, "/r?success=true&prize=Gold+Watch&email=a%40x.com", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/offers?email=a%40x.com&prize=Gold+Watch", w.Header().Get("Location"))

	w = app.do(httptest.NewRequest(http.MethodGet, "/r?prizeId=p1&prizeName=Gold+Watch", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?prizeId=p1&prizeName=Gold+Watch", w.Header().Get("Location"))
}

func TestSetLanguage(t *testing.T) {
	app := newTestApp(t, "")

	req := formRequest("/language", url.Values{"language": {"ar"}})
	req.Header.Set("Accept", "application/json")
	w := app.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"language":"ar","dir":"rtl"}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "language=ar")

	page := httptest.NewRequest(http.MethodGet, "/", nil)
	page.AddCookie(&http.Cookie{Name: "language", Value: "ar"})
	w = app.do(page)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dir="rtl"`)
}

func TestSetLanguageRedirectsBackOnlyWithinSite(t *testing.T) {
	app := newTestApp(t, "")

	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{name: "same host", referer: "http://example.com/winners?page=2", want: "/winners?page=2"},
		{name: "relative", referer: "/offers", want: "/offers"},
		{name: "foreign host", referer: "https://evil.example/phish", want: "/"},
		{name: "protocol relative", referer: "//evil.example/phish", want: "/"},
		{name: "backslash host", referer: "/\\evil.example", want: "/"},
		{name: "javascript", referer: "javascript:alert(1)", want: "/"},
		{name: "missing", want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := formRequest("/language", url.Values{"language": {"fr"}})
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			w := app.do(req)

			require.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Location"))
		})
	}
}

func TestIndexListsKnownPrizes(t *testing.T) {
	app := newTestApp(t, "")
	app.participate(t, "a@x.com", "Gold Watch")

	w := app.do(httptest.NewRequest(http.MethodGet, "/?prizeName=Bike", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<option value="Gold Watch">`)
	assert.Contains(t, body, `value="Bike"`)
	assert.Contains(t, body, `dir="ltr"`)
}

func TestWinnersMasksEmails(t *testing.T) {
	app := newTestApp(t, "")
	_, err := app.handler.Proofs.Add(context.Background(), models.ProofOfDraw{
		Prize: "Gold Watch", WinnerEmail: "alice@x.com", DrawDate: "2024-05-01", ProofType: models.ProofVideo,
	})
	require.NoError(t, err)

	w := app.do(httptest.NewRequest(http.MethodGet, "/winners", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a***e@x.com")
	assert.NotContains(t, w.Body.String(), "alice@x.com")
}

func TestAdminRequiresAuth(t *testing.T) {
	app := newTestApp(t, "")

	w := app.do(httptest.NewRequest(http.MethodGet, "/admin/api/participants", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.admin(httptest.NewRequest(http.MethodGet, "/admin/api/participants", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminUpdateStatus(t *testing.T) {
	app := newTestApp(t, "")
	p := app.participate(t, "a@x.com", "Gold Watch")

	w := app.admin(jsonRequest(http.MethodPatch, "/admin/api/participants/"+p.ID, gin.H{"status": "accepted"}))
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := app.handler.Participants.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, stored.Status)
	assert.Equal(t, "a@x.com", stored.Email)

	last, ok := app.toasts.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Success, last.Level)

	w = app.admin(jsonRequest(http.MethodPatch, "/admin/api/participants/"+p.ID, gin.H{"status": "winner"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.admin(jsonRequest(http.MethodPatch, "/admin/api/participants/missing", gin.H{"status": "rejected"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDeleteNeedsConfirmation(t *testing.T) {
	app := newTestApp(t, "")
	p := app.participate(t, "a@x.com", "Gold Watch")

	w := app.admin(httptest.NewRequest(http.MethodDelete, "/admin/api/participants/"+p.ID, nil))
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), p.ID)

	_, err := app.handler.Participants.Get(context.Background(), p.ID)
	require.NoError(t, err)

	w = app.admin(httptest.NewRequest(http.MethodDelete, "/admin/api/participants/"+p.ID+"?confirm=true", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	_, err = app.handler.Participants.Get(context.Background(), p.ID)
	assert.True(t, services.IsNotFound(err))
}

func TestAdminListFilters(t *testing.T) {
	app := newTestApp(t, "")
	app.participate(t, "a@x.com", "Gold Watch")
	app.participate(t, "b@x.com", "Bike")

	w := app.admin(httptest.NewRequest(http.MethodGet, "/admin/api/participants?prize=Bike", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.Participant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "b@x.com", list[0].Email)
}

func TestAdminSiteKeepsCounters(t *testing.T) {
	app := newTestApp(t, "")
	app.participate(t, "a@x.com", "Gold Watch")

	w := app.admin(httptest.NewRequest(http.MethodPost, "/admin/api/stats/refresh", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = app.admin(jsonRequest(http.MethodPut, "/admin/api/site", gin.H{
		"contactEmail":      "hello@x.com",
		"totalParticipants": 999,
	}))
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/site", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var site models.SiteStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &site))
	assert.Equal(t, "hello@x.com", site.ContactEmail)
	assert.Empty(t, site.OffersURL, "saved settings come back as saved")
	assert.Equal(t, 1, site.TotalParticipants)
}

func TestFooterFallsBackForClearedOverrides(t *testing.T) {
	app := newTestApp(t, "")

	w := app.admin(jsonRequest(http.MethodPut, "/admin/api/site", gin.H{
		"contactEmail": "hello@x.com",
		"winnersUrl":   "",
	}))
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `href="mailto:hello@x.com"`)
	assert.Contains(t, body, `href="/winners"`)
	assert.Contains(t, body, `href="mailto:support@giveaway.local"`)
}

func TestAdminSocialLinks(t *testing.T) {
	app := newTestApp(t, "")

	w := app.do(httptest.NewRequest(http.MethodGet, "/api/social-links", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"telegram":"","facebook":"","instagram":""}`, w.Body.String())

	w = app.admin(jsonRequest(http.MethodPut, "/admin/api/social-links", gin.H{"telegram": "https://t.me/giveaway"}))
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/social-links", nil))
	assert.JSONEq(t, `{"telegram":"https://t.me/giveaway","facebook":"","instagram":""}`, w.Body.String())
}

func TestAdminPushOfferDisabled(t *testing.T) {
	app := newTestApp(t, "")

	w := app.admin(jsonRequest(http.MethodPost, "/admin/api/offers/o1/push", gin.H{"prizeId": "p1"}))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminOfferParticipants(t *testing.T) {
	app := newTestApp(t, "")
	_, err := app.handler.Participants.Create(context.Background(), services.Entry{Email: "a@x.com", Prize: "Gold Watch", OfferID: "o1"})
	require.NoError(t, err)
	app.participate(t, "b@x.com", "Gold Watch")

	w := app.admin(httptest.NewRequest(http.MethodGet, "/admin/api/offers/o1/participants", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Participants []models.Participant `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Participants, 1)
	assert.Equal(t, "a@x.com", body.Participants[0].Email)
}

func TestAdminExportCSV(t *testing.T) {
	app := newTestApp(t, "")
	app.participate(t, "a@x.com", "Gold Watch")

	w := app.admin(httptest.NewRequest(http.MethodGet, "/admin/participants.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "participants-")
	assert.Contains(t, w.Body.String(), "a@x.com,,,,Gold Watch,pending,false,")
}

func TestAdminUploadProofs(t *testing.T) {
	app := newTestApp(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("proofCSV", "proofs.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("prize,prizeValue,winnerEmail,drawDate,proofType,proofUrl,isVerified\n" +
		"Gold Watch,$200,alice@x.com,2024-05-01,video,https://v.example.com/1,true\n" +
		"broken,row\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/proofs/upload-csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := app.admin(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"added":1}`, w.Body.String())

	proofs, err := app.handler.Proofs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, proofs, 1)
	assert.True(t, proofs[0].IsVerified)

	w = app.admin(httptest.NewRequest(http.MethodPost, "/admin/proofs/upload-csv", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminPagePrefillsEditForms(t *testing.T) {
	app := newTestApp(t, "")
	ctx := context.Background()
	require.NoError(t, app.handler.SocialLinks.Save(ctx, models.SocialLinks{
		Telegram:  "https://t.me/giveaway",
		Instagram: "https://instagram.com/giveaway",
	}))
	require.NoError(t, app.handler.Stats.Save(ctx, models.SiteStats{
		OffersURL:    "https://x.example/offers",
		SupportEmail: "help@x.com",
	}))

	w := app.admin(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, `data-endpoint="/admin/api/social-links"`)
	assert.Contains(t, body, `data-endpoint="/admin/api/site"`)
	assert.Contains(t, body, `name="telegram" value="https://t.me/giveaway"`)
	assert.Contains(t, body, `name="facebook" value=""`)
	assert.Contains(t, body, `name="instagram" value="https://instagram.com/giveaway"`)
	assert.Contains(t, body, `name="offersUrl" value="https://x.example/offers"`)
	assert.Contains(t, body, `name="winnersUrl" value=""`)
	assert.Contains(t, body, `name="supportEmail" value="help@x.com"`)
}

func TestAdminRejectsCrossSiteWrites(t *testing.T) {
	app := newTestApp(t, "")
	p := app.participate(t, "a@x.com", "Gold Watch")

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{name: "foreign origin", header: "Origin", value: "https://evil.example", want: http.StatusForbidden},
		{name: "null origin", header: "Origin", value: "null", want: http.StatusForbidden},
		{name: "foreign referer", header: "Referer", value: "https://evil.example/page", want: http.StatusForbidden},
		{name: "same origin", header: "Origin", value: "http://example.com", want: http.StatusOK},
		{name: "same referer", header: "Referer", value: "http://example.com/admin", want: http.StatusOK},
		{name: "no browser headers", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(http.MethodPatch, "/admin/api/participants/"+p.ID, gin.H{"status": "accepted"})
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := app.admin(req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/api/participants", nil)
	req.Header.Set("Origin", "https://evil.example")
	assert.Equal(t, http.StatusOK, app.admin(req).Code, "reads are not blocked")
}

func TestAdminCrossSiteUploadLeavesProofsUntouched(t *testing.T) {
	app := newTestApp(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("proofCSV", "proofs.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("Gold Watch,$200,alice@x.com,2024-05-01,video,https://v.example.com/1,true\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/proofs/upload-csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Origin", "https://evil.example")
	w := app.admin(req)

	require.Equal(t, http.StatusForbidden, w.Code)
	proofs, err := app.handler.Proofs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, proofs)
}

func TestAdminPage(t *testing.T) {
	app := newTestApp(t, "")
	app.participate(t, "a@x.com", "Gold Watch")

	w := app.admin(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@x.com")
}
