package api

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hydrosift/watershed/internal/core"
	"github.com/hydrosift/watershed/internal/model"
	"github.com/hydrosift/watershed/internal/pipeline"
)

// API is the REST control surface for the delineation pipeline
type API struct {
	core   *core.Core
	router *gin.Engine
	server *http.Server
	runs   *runStore
	log    zerolog.Logger
	host   string
	port   int
}

// NewAPI creates the API and wires its run tracker to the core's event bus
// @title           Watershed Delineation API
// @version         1.0
// @description     API for triggering and inspecting watershed delineation runs
func NewAPI(c *core.Core, host string, port int, log zerolog.Logger) *API {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	a := &API{
		core:   c,
		router: router,
		runs:   newRunStore(),
		log:    log.With().Str("component", "api").Logger(),
		host:   host,
		port:   port,
	}

	c.Bus().Subscribe(model.EventStageCompleted, "api_run_tracker", a.runs.handleStageEvent)

	a.setupRoutes()
	return a
}

// setupRoutes configures all API routes
func (a *API) setupRoutes() {
	a.router.GET("/health", a.healthCheck)

	runs := a.router.Group("/runs")
	{
		runs.POST("", a.startRun)
		runs.GET("", a.listRuns)
		runs.GET("/:id", a.getRun)
		runs.GET("/:id/report", a.getRunReport)
	}

	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Start starts the API server
func (a *API) Start() error {
	addr := fmt.Sprintf("%s:%d", a.host, a.port)
	a.server = &http.Server{
		Addr:    addr,
		Handler: a.router,
	}

	a.log.Info().Str("addr", addr).Msg("API server listening")
	return a.server.ListenAndServe()
}

// Stop shuts the API server down
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests
func (a *API) Router() http.Handler {
	return a.router
}

// healthCheck handles GET /health
// @Summary      System health
// @Produce      json
// @Success      200 {object} model.HealthStatus
// @Router       /health [get]
func (a *API) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, a.core.GetSystemHealth())
}

// runRequest optionally overrides the configured run inputs
type runRequest struct {
	DEMPath         string   `json:"dem_path"`
	PourPointsPath  string   `json:"pour_points_path"`
	OutputDir       string   `json:"output_dir"`
	StreamThreshold *float64 `json:"stream_threshold"`
}

// startRun handles POST /runs
// @Summary      Start a delineation run
// @Accept       json
// @Produce      json
// @Success      202 {object} model.RunRecord
// @Failure      400 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Router       /runs [post]
func (a *API) startRun(c *gin.Context) {
	var req runRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	cfg := a.core.Config()
	spec := pipeline.RunSpec{
		DEMPath:         cfg.DEMPath,
		PourPointsPath:  cfg.PourPointsPath,
		OutputDir:       cfg.OutputDir,
		StreamThreshold: cfg.StreamThreshold,
	}
	if req.DEMPath != "" {
		spec.DEMPath = req.DEMPath
	}
	if req.PourPointsPath != "" {
		spec.PourPointsPath = req.PourPointsPath
	}
	if req.OutputDir != "" {
		spec.OutputDir = req.OutputDir
	}
	if req.StreamThreshold != nil {
		spec.StreamThreshold = *req.StreamThreshold
	}

	record, ok := a.runs.begin()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "a run is already in progress"})
		return
	}

	go func() {
		result, err := a.core.ExecuteSpec(context.Background(), spec)
		a.runs.finish(record.ID, result, err)
	}()

	c.JSON(http.StatusAccepted, record)
}

// listRuns handles GET /runs
// @Summary      List runs
// @Produce      json
// @Success      200 {array} model.RunRecord
// @Router       /runs [get]
func (a *API) listRuns(c *gin.Context) {
	c.JSON(http.StatusOK, a.runs.list())
}

// getRun handles GET /runs/:id
// @Summary      Get a run
// @Produce      json
// @Success      200 {object} model.RunRecord
// @Failure      404 {object} map[string]string
// @Router       /runs/{id} [get]
func (a *API) getRun(c *gin.Context) {
	record, ok := a.runs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// getRunReport handles GET /runs/:id/report
// @Summary      Get a run's statistics report
// @Produce      plain
// @Success      200 {string} string
// @Failure      404 {object} map[string]string
// @Router       /runs/{id}/report [get]
func (a *API) getRunReport(c *gin.Context) {
	record, ok := a.runs.get(c.Param("id"))
	if !ok || record.Result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not available"})
		return
	}

	data, err := os.ReadFile(record.Result.ReportPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not available"})
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}
