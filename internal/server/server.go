// Package server exposes the optimizer over HTTP with gin.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/barcut/internal/engine"
	"github.com/piwi3910/barcut/internal/export"
	"github.com/piwi3910/barcut/internal/model"
)

// Config is what the handlers serve and the defaults they apply.
type Config struct {
	Inventory model.Inventory
	Profiles  []model.Profile // section catalog, inventory sections plus custom ones
	Defaults  model.AppConfig
	Options   []engine.Option // passed to every optimizer run
}

// OptimizeResponse is the body of a successful optimize call.
type OptimizeResponse struct {
	Solution model.Solution         `json:"solution"`
	Estimate model.PurchaseEstimate `json:"estimate"` // material bound before cutting
	Material *model.MaterialStats   `json:"material,omitempty"`
	Offcuts  []model.Offcut         `json:"offcuts,omitempty"`
}

// CompareRequest runs one job under several settings. Without scenarios
// the default what-if set built from the job settings is used.
type CompareRequest struct {
	Job       model.Job                   `json:"job"`
	Scenarios []engine.ComparisonScenario `json:"scenarios,omitempty"`
}

type handler struct {
	cfg Config
}

// New returns the API router:
//
//	GET  /healthz
//	GET  /api/v1/profiles
//	GET  /api/v1/inventory
//	POST /api/v1/optimize
//	POST /api/v1/compare
//	POST /api/v1/chart
func New(cfg Config) *gin.Engine {
	if cfg.Profiles == nil {
		cfg.Profiles = cfg.Inventory.Profiles
	}
	h := &handler{cfg: cfg}

	r := gin.Default()
	r.GET("/healthz", h.health)

	v1 := r.Group("/api/v1")
	v1.GET("/profiles", h.profiles)
	v1.GET("/inventory", h.inventory)
	v1.POST("/optimize", h.optimize)
	v1.POST("/compare", h.compare)
	v1.POST("/chart", h.chart)
	return r
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) profiles(c *gin.Context) {
	c.JSON(http.StatusOK, h.cfg.Profiles)
}

func (h *handler) inventory(c *gin.Context) {
	c.JSON(http.StatusOK, h.cfg.Inventory)
}

func (h *handler) optimize(c *gin.Context) {
	var job model.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.run(c.Request.Context(), job)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job := h.prepare(req.Job)
	if err := job.Validate(); err != nil {
		abort(c, fmt.Errorf("%w: %w", engine.ErrInvalidInput, err))
		return
	}
	scenarios := req.Scenarios
	if len(scenarios) == 0 {
		scenarios = engine.BuildDefaultScenarios(job.Settings)
	}
	results := engine.CompareScenarios(c.Request.Context(), scenarios, job.Stock, job.Items, h.cfg.Options...)
	c.JSON(http.StatusOK, results)
}

func (h *handler) chart(c *gin.Context) {
	var job model.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.run(c.Request.Context(), job)
	if err != nil {
		abort(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.RenderChart(&buf, resp.Solution); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// prepare fills unset settings from the configured defaults.
func (h *handler) prepare(job model.Job) model.Job {
	if job.Settings == (model.Settings{}) {
		h.cfg.Defaults.ApplyToSettings(&job.Settings)
	}
	job.Settings = job.Settings.Normalize()
	if job.Profile == "" && !job.Stock.Is2D() {
		job.Profile = h.cfg.Defaults.DefaultProfile
	}
	return job
}

// run optimizes one job and adds material figures and offcuts.
func (h *handler) run(ctx context.Context, job model.Job) (OptimizeResponse, error) {
	job = h.prepare(job)
	if err := job.Validate(); err != nil {
		return OptimizeResponse{}, fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
	}

	var profile *model.Profile
	if job.Profile != "" && !job.Stock.Is2D() {
		p, ok := model.FindProfile(h.cfg.Profiles, job.Profile)
		if !ok {
			return OptimizeResponse{}, fmt.Errorf("%w: unknown profile %q", engine.ErrInvalidInput, job.Profile)
		}
		profile = &p
	}

	sol, err := engine.New(job.Settings, h.cfg.Options...).Optimize(ctx, job.Stock, job.Items)
	if err != nil {
		return OptimizeResponse{}, err
	}

	resp := OptimizeResponse{
		Solution: sol,
		Estimate: model.CalculatePurchaseEstimate(job.Items, job.Stock, 0),
		Offcuts:  model.DetectAllOffcuts(sol, job.Settings.MinOffcut),
	}
	switch {
	case profile != nil:
		m := sol.Material(*profile)
		resp.Material = &m
	case job.Stock.Is2D() && job.Stock.Thickness > 0:
		m := sol.PlateMaterial()
		resp.Material = &m
	}
	return resp, nil
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrSolverTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, engine.ErrUnfittableItem),
		errors.Is(err, engine.ErrInfeasible),
		errors.Is(err, engine.ErrTooManyPatterns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var unfit *engine.UnfittableItemError
	if errors.As(err, &unfit) {
		body["item"] = unfit.ItemID
	}
	c.AbortWithStatusJSON(StatusFor(err), body)
}
