package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"repscout/pkg/config"
	"repscout/pkg/extract"
	"repscout/pkg/logger"
	"repscout/pkg/models"
	"repscout/pkg/ratelimit"
	"repscout/pkg/storage"
)

// Server exposes the scraped directory over HTTP: browse endpoints for the
// latest export plus a contact intake endpoint. Browse traffic runs under
// the general API limit, the contact endpoint under the tighter email
// limit.
type Server struct {
	echo      *echo.Echo
	cfg       *config.ServerConfig
	store     *storage.Manager
	companies []models.CompanyConfig
	logger    logger.Logger
}

// ContactRequest is the intake payload for reaching out to a
// representative.
type ContactRequest struct {
	RepID   string `json:"repId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// New builds the server and its route table.
func New(cfg *config.ServerConfig, store *storage.Manager, companies []models.CompanyConfig, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	s := &Server{
		echo:      e,
		cfg:       cfg,
		store:     store,
		companies: companies,
		logger:    log,
	}

	e.GET("/healthz", s.health)

	api := e.Group("/api", ratelimit.Middleware("api", ratelimit.APILimit))
	api.GET("/reps", s.listReps)
	api.GET("/companies", s.listCompanies)
	api.POST("/contact", s.contact, ratelimit.Middleware("email", ratelimit.EmailLimit))

	return s
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// listReps serves the latest export, with optional company and state
// filters.
func (s *Server) listReps(c echo.Context) error {
	reps, err := s.store.LoadLatestReps()
	if err != nil {
		s.logger.WithError(err).Error("failed to load reps export")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load data")
	}

	company := c.QueryParam("company")
	state := c.QueryParam("state")

	filtered := make([]*models.SalesRep, 0, len(reps))
	for _, rep := range reps {
		if company != "" && !strings.EqualFold(rep.Company, company) {
			continue
		}
		if state != "" && !strings.EqualFold(rep.State, state) {
			continue
		}
		filtered = append(filtered, rep)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(filtered),
		"reps":  filtered,
	})
}

func (s *Server) listCompanies(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":     len(s.companies),
		"companies": s.companies,
	})
}

// contact validates an intake request. Delivery is out of band; the
// endpoint only accepts or rejects the payload.
func (s *Server) contact(c echo.Context) error {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.RepID == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "repId and message are required")
	}
	if !extract.IsValidEmail(req.Email, nil) {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid reply email is required")
	}

	s.logger.InfoWithFields("contact request accepted", map[string]interface{}{
		"rep_id": req.RepID,
		"client": ratelimit.ClientIdentifier(c.Request()),
	})

	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}
