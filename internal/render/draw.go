// Package render draws the piece check overlays. Every function works on
// a copy, the frame passed in is never modified.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/bricklab/piececheck/internal/detect"
)

var (
	// detectionColor is used for context detections drawn when the
	// expected piece was not found
	detectionColor = color.RGBA{G: 255, A: 255}
	// matchColor marks the candidate selected for the expected piece
	matchColor = color.RGBA{G: 194, B: 255, A: 255}
	// centerColor marks the keypoint centroid of the matched piece
	centerColor = color.RGBA{R: 255, B: 255, A: 255}
)

const (
	lineThickness = 2
	centerRadius  = 5
	// labelPad is the gap between a box's top edge and its label baseline
	labelPad = 10
)

// Plain returns an untouched copy of the frame. Used when the detector
// reported nothing at all.
func Plain(img gocv.Mat) gocv.Mat {
	return img.Clone()
}

// AllDetections draws every detection's box and label on a copy of the
// frame. Used when the expected piece was not found, so the operator can
// see what the model did report.
func AllDetections(img gocv.Mat, objs []detect.Object) gocv.Mat {

	out := img.Clone()

	for _, obj := range objs {
		boxAndLabel(&out, obj, detectionColor)
	}

	return out
}

// Match draws the selected candidate on a copy of the frame, with a filled
// marker at the keypoint centroid when one was computed. The center is in
// cropped frame coordinates, the same space as the frame itself.
func Match(img gocv.Mat, obj detect.Object, center detect.Point, hasCenter bool) gocv.Mat {

	out := img.Clone()

	boxAndLabel(&out, obj, matchColor)

	if hasCenter {
		gocv.Circle(&out, image.Pt(int(center.X), int(center.Y)),
			centerRadius, centerColor, -1)
	}

	return out
}

// boxAndLabel draws the bounding box with a "{class} {confidence}" label
// just above it, clamped so the label never renders above the image top
// edge.
func boxAndLabel(img *gocv.Mat, obj detect.Object, clr color.RGBA) {

	rect := image.Rect(obj.Box.Left, obj.Box.Top, obj.Box.Right, obj.Box.Bottom)
	gocv.Rectangle(img, rect, clr, lineThickness)

	text := fmt.Sprintf("%s %.2f", obj.Name, obj.Confidence)

	y := obj.Box.Top - labelPad
	if y < 0 {
		y = 0
	}

	gocv.PutTextWithParams(img, text, image.Pt(obj.Box.Left, y),
		gocv.FontHersheySimplex, 0.8, clr, 2, gocv.LineAA, false)
}
