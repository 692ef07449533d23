package handlers

import (
	"errors"
	"net/http"

	"giveaway/internal/locale"
	"giveaway/internal/redirect"
	"giveaway/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// entryForm is the body of POST /participate, as a form or as JSON.
type entryForm struct {
	Email      string `form:"email" json:"email"`
	UserID     string `form:"userId" json:"userId"`
	PrizeID    string `form:"prizeId" json:"prizeId"`
	Prize      string `form:"prize" json:"prize"`
	OfferID    string `form:"offerId" json:"offerId"`
	OfferTitle string `form:"offerTitle" json:"offerTitle"`
}

// ShowIndex renders the entry form. prizeId and prizeName preselect a prize.
func (h *HTTPHandler) ShowIndex(c *gin.Context) {
	prizes, err := h.Participants.PrizeNames(c.Request.Context())
	if err != nil {
		prizes = nil
	}
	params := redirect.FromQuery(c.Request.URL.Query())
	h.renderPage(c, gin.H{
		"title":   "Giveaway",
		"Prizes":  prizes,
		"PrizeID": params.PrizeID,
		"Prize":   params.PrizeName,
		"Email":   params.Email,
		"Error":   c.Query("error"),
	}, "index.html")
}

// Participate stores an entry, registers the offer with the partner API and
// opens the success modal.
func (h *HTTPHandler) Participate(c *gin.Context) {
	pref := locale.FromContext(c)
	wantsJSON := c.ContentType() == gin.MIMEJSON

	var form entryForm
	if err := c.ShouldBind(&form); err != nil {
		errorJSON(c, http.StatusBadRequest, pref.T("entry.invalid"))
		return
	}

	p, err := h.Participants.Create(c.Request.Context(), services.Entry{
		Email:      form.Email,
		UserID:     form.UserID,
		OfferID:    form.OfferID,
		OfferTitle: form.OfferTitle,
		Prize:      form.Prize,
	})
	switch {
	case errors.Is(err, services.ErrInvalidEntry):
		if wantsJSON {
			errorJSON(c, http.StatusBadRequest, pref.T("entry.invalid"))
			return
		}
		c.Redirect(http.StatusSeeOther, redirect.ParticipatePath(form.PrizeID, form.Prize)+"&error=entry.invalid")
		return
	case err != nil:
		errorJSON(c, http.StatusBadGateway, pref.T("entry.failed"))
		return
	}

	if form.OfferID != "" && h.Offers != nil {
		// The entry is already stored; a partner failure only gets logged.
		if err := h.Offers.AddOffer(c.Request.Context(), form.OfferID, form.PrizeID); err != nil {
			logger.Warningf("add-offer for participant %s failed: %v", p.ID, err)
		}
	}

	continueURL, err := redirect.OfferURL(h.RedirectBaseURL, redirect.Params{
		PrizeID:   form.PrizeID,
		PrizeName: p.Prize,
		Email:     p.Email,
	})
	if err != nil {
		logger.Errorf("Invalid offer redirect base %q: %v", h.RedirectBaseURL, err)
		continueURL = redirect.OffersPath(p.Prize, p.Email)
	}
	session := h.Modals.Open(p.ID, p.Prize, continueURL)

	if wantsJSON {
		c.JSON(http.StatusCreated, gin.H{
			"participant": p,
			"sessionId":   session.ID,
			"message":     pref.T("entry.success"),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/success/"+session.ID)
}

// ShowSuccess renders the success modal of a session.
func (h *HTTPHandler) ShowSuccess(c *gin.Context) {
	session, err := h.Modals.Get(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.renderPage(c, gin.H{
		"title":       "Thank you",
		"Session":     session,
		"State":       session.Countdown.State(),
		"DelayMillis": h.Modals.Delay().Milliseconds(),
	}, "success.html")
}

// SuccessStatus reports the modal state so the page knows when to move on.
func (h *HTTPHandler) SuccessStatus(c *gin.Context) {
	session, err := h.Modals.Get(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":       session.Countdown.State(),
		"continueUrl": session.ContinueURL,
	})
}

// ContinueSuccess closes the modal now and follows its continue URL.
func (h *HTTPHandler) ContinueSuccess(c *gin.Context) {
	session, err := h.Modals.Continue(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.Modals.Close(session.ID)
	c.Redirect(http.StatusSeeOther, session.ContinueURL)
}

// ShowOffers renders the verification page.
func (h *HTTPHandler) ShowOffers(c *gin.Context) {
	prizes, err := h.Participants.PrizeNames(c.Request.Context())
	if err != nil {
		prizes = nil
	}
	h.renderPage(c, gin.H{
		"title":  "Offers",
		"Prizes": prizes,
		"Prize":  c.Query("prize"),
		"Email":  c.Query("email"),
	}, "offers.html")
}

type verifyRequest struct {
	Email string `form:"email" json:"email"`
	Prize string `form:"prize" json:"prize"`
}

// Verify runs the email+prize check. Errors are reported, never swallowed.
func (h *HTTPHandler) Verify(c *gin.Context) {
	pref := locale.FromContext(c)

	var req verifyRequest
	if err := c.ShouldBind(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, pref.T("entry.invalid"))
		return
	}

	result, err := h.Verifier.Check(c.Request.Context(), req.Email, req.Prize)
	switch {
	case errors.Is(err, services.ErrInvalidEntry):
		c.JSON(http.StatusBadRequest, gin.H{"state": result.State, "error": pref.T("entry.invalid")})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"state": result.State, "error": pref.T("verify.error")})
		return
	}

	msg := pref.T("verify.notfound")
	if result.State == services.StateFound {
		msg = pref.T("verify.found")
	}
	c.JSON(http.StatusOK, gin.H{"state": result.State, "message": msg})
}

// ShowWinners renders the proof-of-draw list.
func (h *HTTPHandler) ShowWinners(c *gin.Context) {
	proofs, err := h.Proofs.List(c.Request.Context())
	if err != nil {
		c.String(http.StatusBadGateway, "Winners are unavailable right now")
		return
	}
	h.renderPage(c, gin.H{"title": "Winners", "Proofs": proofs}, "winners.html")
}

// ExternalRedirect forwards prizeId, prizeName and email to the partner page.
func (h *HTTPHandler) ExternalRedirect(c *gin.Context) {
	target, err := redirect.OfferURL(h.RedirectBaseURL, redirect.FromQuery(c.Request.URL.Query()))
	if err != nil {
		logger.Errorf("Invalid offer redirect base %q: %v", h.RedirectBaseURL, err)
		c.String(http.StatusInternalServerError, "Redirect is misconfigured")
		return
	}
	c.Redirect(http.StatusFound, target)
}

// InternalRedirect navigates inside the site based on the query.
func (h *HTTPHandler) InternalRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, redirect.Internal(redirect.FromQuery(c.Request.URL.Query())))
}

// SetLanguage stores the language preference and goes back.
func (h *HTTPHandler) SetLanguage(c *gin.Context) {
	lang := c.PostForm("language")
	if lang == "" {
		lang = c.Query("language")
	}
	pref := locale.Set(c, lang)

	if c.ContentType() == gin.MIMEJSON || c.GetHeader("Accept") == gin.MIMEJSON {
		c.JSON(http.StatusOK, gin.H{"language": pref.Language, "dir": pref.Dir})
		return
	}
	back := localPath(c.Request.Referer(), c.Request.Host)
	if back == "" {
		back = "/"
	}
	c.Redirect(http.StatusSeeOther, back)
}

// GetSocialLinks returns the social links, defaults included.
func (h *HTTPHandler) GetSocialLinks(c *gin.Context) {
	links, err := h.SocialLinks.Load(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusBadGateway, "could not load social links")
		return
	}
	c.JSON(http.StatusOK, links)
}

// GetSite returns the site settings as saved, or the defaults when none were.
func (h *HTTPHandler) GetSite(c *gin.Context) {
	site, err := h.Stats.Load(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusBadGateway, "could not load site settings")
		return
	}
	c.JSON(http.StatusOK, site)
}
