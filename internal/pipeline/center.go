package pipeline

import (
	"gonum.org/v1/gonum/stat"

	"github.com/bricklab/piececheck/internal/detect"
)

// ComputeCenter returns the arithmetic mean of the given keypoints, a
// lightweight stand-in for a full pose estimate. ok is false for nil or
// empty input, never a panic. No orientation is derived.
func ComputeCenter(pts []detect.Point) (detect.Point, bool) {

	if len(pts) == 0 {
		return detect.Point{}, false
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))

	for i, p := range pts {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
	}

	return detect.Point{
		X: float32(stat.Mean(xs, nil)),
		Y: float32(stat.Mean(ys, nil)),
	}, true
}

// ToFullImage maps a point in cropped frame coordinates back into the
// full frame by restoring the vertical crop offset.
func ToFullImage(p detect.Point, yOffset int) detect.Point {
	return detect.Point{X: p.X, Y: p.Y + float32(yOffset)}
}
