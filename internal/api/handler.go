// Package api exposes the piece verification pipeline over HTTP.
package api

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bricklab/piececheck/internal/pipeline"
)

// checkPieceRequest is the JSON body of the /check_piece operation.
type checkPieceRequest struct {
	Image         string `json:"image"`
	ExpectedClass string `json:"expected_class"`
	// StepIndex is optional and defaults to -1 when absent
	StepIndex *int `json:"step_index"`
}

// Handler holds the route handlers and their dependencies.
type Handler struct {
	checker *pipeline.Checker
	log     *zap.Logger
}

func NewHandler(checker *pipeline.Checker, log *zap.Logger) *Handler {
	return &Handler{checker: checker, log: log}
}

// CheckPiece verifies that the expected assembly piece is visible in the
// submitted frame. Validation and pipeline failures are both reported as
// {success:false, error} payloads with transport-level success, matching
// the original service behavior.
func (h *Handler) CheckPiece(c *gin.Context) {

	var req checkPieceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("rejected request body", zap.Error(err))
		c.JSON(http.StatusOK, errorPayload("invalid request body: "+err.Error(), -1))
		return
	}

	step := -1
	if req.StepIndex != nil {
		step = *req.StepIndex
	}

	// a blank expected_class is treated as missing. Whitespace around a
	// real value is trimmed by the pipeline before matching.
	if req.Image == "" || req.ExpectedClass == "" {
		c.JSON(http.StatusOK,
			errorPayload("missing 'image' or 'expected_class' in request", step))
		return
	}

	imgBytes, err := base64.StdEncoding.DecodeString(req.Image)

	if err != nil {
		c.JSON(http.StatusOK, errorPayload("invalid base64 image data", step))
		return
	}

	resp := h.checker.Check(pipeline.Request{
		Image:         imgBytes,
		ExpectedClass: req.ExpectedClass,
		StepIndex:     step,
	})

	c.JSON(http.StatusOK, resp)
}

// Health reports service readiness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// errorPayload builds the minimal failure response for requests rejected
// before the pipeline runs, echoing the caller's step index.
func errorPayload(msg string, step int) pipeline.Response {
	return pipeline.Response{
		StepIndex: step,
		CenterX:   -1.0,
		CenterY:   -1.0,
		Error:     msg,
	}
}

// Router assembles the service routes.
func Router(h *Handler, metricsHandler http.Handler) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/check_piece", h.CheckPiece)
	r.GET("/healthz", h.Health)

	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	return r
}
