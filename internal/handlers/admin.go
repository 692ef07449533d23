package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"giveaway/internal/models"
	"giveaway/internal/offerapi"
	"giveaway/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// ShowAdmin renders the admin dashboard.
func (h *HTTPHandler) ShowAdmin(c *gin.Context) {
	participants, err := h.Participants.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		c.String(http.StatusBadGateway, "Participants are unavailable right now")
		return
	}
	proofs, err := h.Proofs.List(c.Request.Context())
	if err != nil {
		proofs = nil
	}
	links, err := h.SocialLinks.Load(c.Request.Context())
	if err != nil {
		links = h.SocialLinks.Defaults()
	}
	site, err := h.Stats.Load(c.Request.Context())
	if err != nil {
		site = h.Stats.Defaults()
	}
	h.renderPage(c, gin.H{
		"title":        "Admin",
		"Participants": participants,
		"Proofs":       proofs,
		"Statuses":     []models.ParticipantStatus{models.StatusPending, models.StatusAccepted, models.StatusRejected},
		"EditLinks":    links,
		"EditSite":     site,
	}, "admin.html")
}

// PutSocialLinks replaces the social links document.
func (h *HTTPHandler) PutSocialLinks(c *gin.Context) {
	var links models.SocialLinks
	if err := c.ShouldBindJSON(&links); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid social links")
		return
	}
	if err := h.SocialLinks.Save(c.Request.Context(), links); err != nil {
		errorJSON(c, http.StatusBadGateway, "could not save social links")
		return
	}
	c.JSON(http.StatusOK, links)
}

// PutSite replaces the site settings document. The counters are kept as
// last computed by the stats job.
func (h *HTTPHandler) PutSite(c *gin.Context) {
	var site models.SiteStats
	if err := c.ShouldBindJSON(&site); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid site settings")
		return
	}
	current, err := h.Stats.Load(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusBadGateway, "could not load site settings")
		return
	}
	site.TotalParticipants = current.TotalParticipants
	site.VerifiedParticipants = current.VerifiedParticipants
	site.TotalWinners = current.TotalWinners
	site.UpdatedAt = current.UpdatedAt

	if err := h.Stats.Save(c.Request.Context(), site); err != nil {
		errorJSON(c, http.StatusBadGateway, "could not save site settings")
		return
	}
	c.JSON(http.StatusOK, site)
}

// RefreshStats recomputes the counters right away.
func (h *HTTPHandler) RefreshStats(c *gin.Context) {
	stats, err := h.Stats.Refresh(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusBadGateway, "could not refresh stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListParticipants returns participants filtered by email, prize, offerId and status.
func (h *HTTPHandler) ListParticipants(c *gin.Context) {
	participants, err := h.Participants.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		errorJSON(c, http.StatusBadGateway, "could not list participants")
		return
	}
	c.JSON(http.StatusOK, participants)
}

type statusRequest struct {
	Status models.ParticipantStatus `json:"status" binding:"required"`
}

// UpdateParticipantStatus accepts or rejects a participant.
func (h *HTTPHandler) UpdateParticipantStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "status is required")
		return
	}

	err := h.Participants.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		errorJSON(c, http.StatusBadRequest, err.Error())
	case services.IsNotFound(err):
		errorJSON(c, http.StatusNotFound, "participant not found")
	case err != nil:
		errorJSON(c, http.StatusBadGateway, "could not update participant")
	default:
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
	}
}

// DeleteParticipant deletes a participant once the request carries confirm=true.
// Without it the prompt comes back with 409.
func (h *HTTPHandler) DeleteParticipant(c *gin.Context) {
	id := c.Param("id")
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))

	var prompt string
	confirm := services.ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return confirmed
	})

	err := h.Participants.Delete(c.Request.Context(), id, confirm)
	switch {
	case errors.Is(err, services.ErrNotConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "confirm": prompt})
	case services.IsNotFound(err):
		errorJSON(c, http.StatusNotFound, "participant not found")
	case err != nil:
		errorJSON(c, http.StatusBadGateway, "could not delete participant")
	default:
		c.Status(http.StatusNoContent)
	}
}

// OfferParticipants lists the participants who came in through one offer.
func (h *HTTPHandler) OfferParticipants(c *gin.Context) {
	participants, err := h.Participants.List(c.Request.Context(), services.Filter{OfferID: c.Param("offerId")})
	if err != nil {
		errorJSON(c, http.StatusBadGateway, "could not list participants")
		return
	}
	c.JSON(http.StatusOK, gin.H{"offerId": c.Param("offerId"), "participants": participants})
}

type pushOfferRequest struct {
	PrizeID string `json:"prizeId"`
}

// PushOffer registers an offer with the partner API.
func (h *HTTPHandler) PushOffer(c *gin.Context) {
	var req pushOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request")
		return
	}

	err := h.Offers.AddOffer(c.Request.Context(), c.Param("offerId"), req.PrizeID)
	switch {
	case errors.Is(err, offerapi.ErrDisabled):
		errorJSON(c, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		errorJSON(c, http.StatusBadGateway, err.Error())
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ExportParticipantsCSV streams every participant as a CSV download.
func (h *HTTPHandler) ExportParticipantsCSV(c *gin.Context) {
	filename := fmt.Sprintf("participants-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.Participants.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		logger.Errorf("Failed to export participants: %v", err)
		if !c.Writer.Written() {
			errorJSON(c, http.StatusBadGateway, "could not export participants")
		}
	}
}

// UploadProofsCSV imports proof-of-draw rows from the proofCSV form file.
func (h *HTTPHandler) UploadProofsCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("proofCSV")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "proofCSV file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "could not open uploaded file")
		return
	}
	defer file.Close()

	added, err := h.Proofs.ImportCSV(c.Request.Context(), file)
	if err != nil {
		logger.Errorf("Proof CSV import stopped after %d rows: %v", added, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "import failed", "added": added})
		return
	}
	logger.Infof("Imported %d proofs from %s", added, fileHeader.Filename)
	c.JSON(http.StatusOK, gin.H{"added": added})
}

func filterFromQuery(c *gin.Context) services.Filter {
	return services.Filter{
		Email:   c.Query("email"),
		Prize:   c.Query("prize"),
		OfferID: c.Query("offerId"),
		Status:  models.ParticipantStatus(c.Query("status")),
	}
}
