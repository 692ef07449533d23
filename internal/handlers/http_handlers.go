package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"giveaway/internal/locale"
	"giveaway/internal/metrics"
	"giveaway/internal/models"
	"giveaway/internal/offerapi"
	"giveaway/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// ParseTemplates parses the embedded page templates.
func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"mask": services.MaskEmail,
	}).ParseFS(templateFS, "templates/*.html")
}

// Deps are the collaborators of HTTPHandler.
type Deps struct {
	Participants    *services.ParticipantService
	Verifier        *services.Verifier
	Proofs          *services.ProofService
	Stats           *services.StatsService
	SocialLinks     *services.Binding[models.SocialLinks]
	Modals          *services.SuccessModals
	Offers          *offerapi.Client
	Hub             *Hub
	Templates       *template.Template
	RedirectBaseURL string
	DefaultLanguage string
}

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	Deps
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(deps Deps) *HTTPHandler {
	if deps.DefaultLanguage == "" {
		deps.DefaultLanguage = "en"
	}
	return &HTTPHandler{Deps: deps}
}

// renderPage is a helper to perform a two-step template rendering.
// It first executes the content template into a buffer, then executes the main
// layout template, passing the rendered content as a variable.
func (h *HTTPHandler) renderPage(c *gin.Context, pageData gin.H, contentTmpl string) {
	pref := locale.FromContext(c)
	pageData["Locale"] = pref
	pageData["Languages"] = locale.Supported()

	// Step 1: Render the specific page content into a buffer.
	buf := new(bytes.Buffer)
	err := h.Templates.ExecuteTemplate(buf, contentTmpl, pageData)
	if err != nil {
		logger.Errorf("Error executing content template %s: %v", contentTmpl, err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}

	// Step 2: Add the rendered content and the footer data, then render the layout.
	pageData["PageContent"] = template.HTML(buf.String())
	pageData["Site"], pageData["Socials"] = h.footer(c.Request.Context())

	c.Header("Content-Type", "text/html; charset=utf-8")
	err = h.Templates.ExecuteTemplate(c.Writer, "layout.html", pageData)
	if err != nil {
		logger.Errorf("Error executing layout template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// footer loads the singletons shown on every page. Failures and empty
// overrides fall back to defaults.
func (h *HTTPHandler) footer(ctx context.Context) (models.SiteStats, models.SocialLinks) {
	site, err := h.Stats.Load(ctx)
	if err != nil {
		site = h.Stats.Defaults()
	}
	site = services.WithDefaults(site)
	socials, err := h.SocialLinks.Load(ctx)
	if err != nil {
		socials = h.SocialLinks.Defaults()
	}
	return site, socials
}

// RegisterPublicRoutes registers the routes open to every visitor.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.Use(locale.Middleware(h.DefaultLanguage))

	router.GET("/", h.ShowIndex)
	router.POST("/participate", h.Participate)
	router.GET("/success/:id", h.ShowSuccess)
	router.POST("/success/:id/continue", h.ContinueSuccess)
	router.GET("/api/success/:id", h.SuccessStatus)
	router.GET("/offers", h.ShowOffers)
	router.POST("/api/verify", h.Verify)
	router.GET("/winners", h.ShowWinners)
	router.GET("/go", h.ExternalRedirect)
	router.GET("/r", h.InternalRedirect)
	router.POST("/language", h.SetLanguage)
	router.GET("/api/social-links", h.GetSocialLinks)
	router.GET("/api/site", h.GetSite)
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// RegisterAdminRoutes registers the admin routes. The group is expected to
// carry AdminMiddleware.
func (h *HTTPHandler) RegisterAdminRoutes(admin gin.IRouter) {
	admin.GET("", h.ShowAdmin)
	admin.GET("/ws", h.AdminWebSocket)
	admin.GET("/participants.csv", h.ExportParticipantsCSV)
	admin.POST("/proofs/upload-csv", h.UploadProofsCSV)

	admin.GET("/api/social-links", h.GetSocialLinks)
	admin.PUT("/api/social-links", h.PutSocialLinks)
	admin.GET("/api/site", h.GetSite)
	admin.PUT("/api/site", h.PutSite)
	admin.POST("/api/stats/refresh", h.RefreshStats)
	admin.GET("/api/participants", h.ListParticipants)
	admin.PATCH("/api/participants/:id", h.UpdateParticipantStatus)
	admin.DELETE("/api/participants/:id", h.DeleteParticipant)
	admin.GET("/api/offers/:offerId/participants", h.OfferParticipants)
	admin.POST("/api/offers/:offerId/push", h.PushOffer)
}

// AdminMiddleware protects the admin area with basic auth. State-changing
// requests that carry an Origin or Referer must come from this host.
func (h *HTTPHandler) AdminMiddleware(username, password string) gin.HandlerFunc {
	auth := gin.BasicAuthForRealm(gin.Accounts{username: password}, "giveaway admin")
	return func(c *gin.Context) {
		auth(c)
		if c.IsAborted() {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		source := c.GetHeader("Origin")
		if source == "" {
			source = c.GetHeader("Referer")
		}
		if source != "" && !sameHost(source, c.Request.Host) {
			logger.Warningf("Rejected cross-site %s %s from %s", c.Request.Method, c.Request.URL.Path, source)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "cross-site request rejected"})
		}
	}
}

// sameHost reports whether raw is an absolute URL pointing at host.
func sameHost(raw, host string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

// localPath returns the path of raw when it stays on host, or "".
func localPath(raw, host string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Host == "" {
		// Rooted paths only; browsers read "//host" and "/\host" as another host.
		if u.Scheme != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
			return ""
		}
		return u.RequestURI()
	}
	if !strings.EqualFold(u.Host, host) {
		return ""
	}
	return u.RequestURI()
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
