package pipeline

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// CropPlayArea removes the UI chrome from the top and bottom of a frame
// so the detector only sees the play area. It returns a view into the
// frame covering rows [yOffset, h*(1-bottomRatio)) across the full width,
// plus the vertical offset of that view in the original frame.
func CropPlayArea(img gocv.Mat, topRatio, bottomRatio float64) (gocv.Mat, int, error) {

	if topRatio < 0 || topRatio >= 1 || bottomRatio < 0 || bottomRatio >= 1 ||
		topRatio+bottomRatio >= 1 {
		return gocv.Mat{}, 0, fmt.Errorf(
			"invalid crop ratios top=%.2f bottom=%.2f", topRatio, bottomRatio)
	}

	h := img.Rows()
	yStart := int(float64(h) * topRatio)
	yEnd := int(float64(h) * (1.0 - bottomRatio))

	if yEnd-yStart <= 0 {
		return gocv.Mat{}, 0, fmt.Errorf(
			"degenerate crop, rows [%d,%d) of %d", yStart, yEnd, h)
	}

	return img.Region(image.Rect(0, yStart, img.Cols(), yEnd)), yStart, nil
}
