// Package pipeline implements the per-request piece verification
// pipeline: crop the play area out of the frame, run detection, filter by
// the expected class, estimate the piece center from keypoints, remap it
// into the full frame and annotate the result.
package pipeline

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/bricklab/piececheck/internal/detect"
	"github.com/bricklab/piececheck/internal/metrics"
	"github.com/bricklab/piececheck/internal/render"
)

// centerUnknown is the sentinel reported when no piece center could be
// computed.
const centerUnknown = -1.0

// Request is one piece verification request after transport decoding.
type Request struct {
	// Image is the still image bytes in any format OpenCV can decode
	Image []byte
	// ExpectedClass is the piece name asserted by the caller for the
	// current assembly step
	ExpectedClass string
	StepIndex     int
}

// Response mirrors the JSON contract of the verification endpoint. The
// rotation fields are placeholders for a future pose estimator and always
// encode as null.
type Response struct {
	Success        bool     `json:"success"`
	Found          bool     `json:"found"`
	Matched        bool     `json:"matched"`
	YoloClass      string   `json:"yolo_class"`
	ExpectedClass  string   `json:"expected_class"`
	StepIndex      int      `json:"step_index"`
	Confidence     float64  `json:"confidence"`
	AnnotatedImage string   `json:"annotated_image"`
	Yaw            *float64 `json:"yaw"`
	Pitch          *float64 `json:"pitch"`
	Roll           *float64 `json:"roll"`
	ReprojError    *float64 `json:"reproj_error"`
	CenterX        float64  `json:"center_x"`
	CenterY        float64  `json:"center_y"`
	Error          string   `json:"error,omitempty"`
}

// Params holds the tunable pipeline settings.
type Params struct {
	// TopCutRatio and BottomCutRatio define the UI chrome cropped from the
	// frame before detection, both in [0,1) with sum below 1
	TopCutRatio    float64
	BottomCutRatio float64
	// MatchThreshold is the minimum confidence for a found piece to count
	// as matched
	MatchThreshold float32
}

// DefaultParams returns the settings of the original deployment.
func DefaultParams() Params {
	return Params{
		TopCutRatio:    0.18,
		BottomCutRatio: 0.15,
		MatchThreshold: 0.45,
	}
}

// Checker runs the verification pipeline. It holds no per-request state,
// a single Checker serves concurrent requests.
type Checker struct {
	det    detect.Detector
	sink   Sink
	params Params
	log    *zap.Logger
	m      *metrics.Metrics
}

// NewChecker wires the pipeline dependencies. metrics may be nil to
// disable collection.
func NewChecker(det detect.Detector, sink Sink, params Params,
	log *zap.Logger, m *metrics.Metrics) *Checker {

	return &Checker{
		det:    det,
		sink:   sink,
		params: params,
		log:    log,
		m:      m,
	}
}

// Check runs one request through the pipeline. It always returns a
// payload: any internal fault, panics included, is converted into an
// error response rather than propagated.
func (c *Checker) Check(req Request) (resp Response) {

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panic during piece check",
				zap.Any("panic", r), zap.Int("step", req.StepIndex))
			resp = c.fail(req, fmt.Sprintf("internal error: %v", r))
		}
	}()

	expected := strings.TrimSpace(req.ExpectedClass)

	frame, err := gocv.IMDecode(req.Image, gocv.IMReadColor)

	if err != nil {
		return c.fail(req, "failed to decode image")
	}

	if frame.Empty() {
		frame.Close()
		return c.fail(req, "failed to decode image")
	}
	defer frame.Close()

	cropped, yOffset, err := CropPlayArea(frame,
		c.params.TopCutRatio, c.params.BottomCutRatio)

	if err != nil {
		return c.fail(req, err.Error())
	}
	defer cropped.Close()

	start := time.Now()
	objs, err := c.det.Detect(cropped)
	c.m.ObserveInference(time.Since(start))

	if err != nil {
		c.log.Error("inference failed", zap.Error(err),
			zap.Int("step", req.StepIndex))
		return c.fail(req, "inference failed: "+err.Error())
	}

	resp = Response{
		Success:       true,
		ExpectedClass: expected,
		StepIndex:     req.StepIndex,
		CenterX:       centerUnknown,
		CenterY:       centerUnknown,
	}

	// nothing detected at all in the play area
	if len(objs) == 0 {
		annotated := render.Plain(cropped)
		defer annotated.Close()

		c.sink.Record(annotated, "no_det")

		return c.finish(req, resp, annotated, metrics.OutcomeNoDetections)
	}

	best, found := SelectBestMatch(objs, expected)

	// the expected piece is not among the detections. Draw everything the
	// model reported as a debug aid.
	if !found {
		annotated := render.AllDetections(cropped, objs)
		defer annotated.Close()

		c.sink.Record(annotated, fmt.Sprintf("no_expected_step%d", req.StepIndex))

		c.log.Info("expected piece not found",
			zap.String("expected", expected),
			zap.Int("step", req.StepIndex),
			zap.Int("detections", len(objs)))

		return c.finish(req, resp, annotated, metrics.OutcomeNoMatch)
	}

	// piece center from the candidate's keypoints, remapped into the full
	// frame. A candidate without usable keypoints keeps the sentinel.
	center, hasCenter := ComputeCenter(best.KeyPoints)

	if hasCenter {
		full := ToFullImage(center, yOffset)
		resp.CenterX = float64(full.X)
		resp.CenterY = float64(full.Y)
	}

	annotated := render.Match(cropped, best, center, hasCenter)
	defer annotated.Close()

	c.sink.Record(annotated,
		fmt.Sprintf("expected_step%d_%s", req.StepIndex, best.Name))

	resp.Found = true
	resp.Matched = best.Confidence >= c.params.MatchThreshold
	resp.YoloClass = best.Name
	resp.Confidence = float64(best.Confidence)

	c.log.Info("piece checked",
		zap.String("class", best.Name),
		zap.Float32("confidence", best.Confidence),
		zap.Bool("matched", resp.Matched),
		zap.Int("step", req.StepIndex))

	return c.finish(req, resp, annotated, metrics.OutcomeFound)
}

// finish encodes the annotated frame into the response and counts the
// request outcome.
func (c *Checker) finish(req Request, resp Response, annotated gocv.Mat,
	outcome string) Response {

	img, err := encodeBase64JPG(annotated)

	if err != nil {
		c.log.Error("failed to encode annotated image", zap.Error(err))
		return c.fail(req, err.Error())
	}

	c.m.IncOutcome(outcome)

	resp.AnnotatedImage = img
	return resp
}

// fail builds the error payload. The remaining fields keep their zero
// values with the center at its sentinel.
func (c *Checker) fail(req Request, msg string) Response {

	c.m.IncOutcome(metrics.OutcomeError)

	return Response{
		ExpectedClass: strings.TrimSpace(req.ExpectedClass),
		StepIndex:     req.StepIndex,
		CenterX:       centerUnknown,
		CenterY:       centerUnknown,
		Error:         msg,
	}
}

// encodeBase64JPG serializes the frame as a base64 encoded JPEG.
func encodeBase64JPG(img gocv.Mat) (string, error) {

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)

	if err != nil {
		return "", fmt.Errorf("error encoding image: %w", err)
	}

	defer buf.Close()

	return base64.StdEncoding.EncodeToString(buf.GetBytes()), nil
}
