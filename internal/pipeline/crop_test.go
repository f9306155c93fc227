package pipeline

import (
	"gocv.io/x/gocv"
	"testing"
)

func TestCropPlayArea(t *testing.T) {

	tests := []struct {
		height         int
		width          int
		topRatio       float64
		bottomRatio    float64
		expectedOffset int
		expectedRows   int
	}{
		{1000, 800, 0.18, 0.15, 180, 670},
		{556, 400, 0.18, 0.15, 100, 372},
		{200, 100, 0.0, 0.0, 0, 200},
		{100, 100, 0.5, 0.25, 50, 25},
	}

	for _, tc := range tests {
		img := gocv.NewMatWithSize(tc.height, tc.width, gocv.MatTypeCV8UC3)

		cropped, yOffset, err := CropPlayArea(img, tc.topRatio, tc.bottomRatio)

		if err != nil {
			t.Fatalf("crop of %dx%d failed: %v", tc.width, tc.height, err)
		}

		if yOffset != tc.expectedOffset {
			t.Errorf("crop of %dx%d: expected yOffset=%d, got %d",
				tc.width, tc.height, tc.expectedOffset, yOffset)
		}

		if cropped.Rows() != tc.expectedRows {
			t.Errorf("crop of %dx%d: expected %d rows, got %d",
				tc.width, tc.height, tc.expectedRows, cropped.Rows())
		}

		if cropped.Cols() != tc.width {
			t.Errorf("crop of %dx%d: width changed to %d",
				tc.width, tc.height, cropped.Cols())
		}

		cropped.Close()
		img.Close()
	}
}

func TestCropPlayAreaInvalidRatios(t *testing.T) {

	tests := []struct {
		topRatio    float64
		bottomRatio float64
	}{
		{-0.1, 0.15},
		{0.18, -0.1},
		{1.0, 0.0},
		{0.0, 1.0},
		{0.6, 0.5},
	}

	img := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	defer img.Close()

	for _, tc := range tests {
		if _, _, err := CropPlayArea(img, tc.topRatio, tc.bottomRatio); err == nil {
			t.Errorf("ratios top=%.2f bottom=%.2f: expected error, got none",
				tc.topRatio, tc.bottomRatio)
		}
	}
}

func TestCropPlayAreaDegenerate(t *testing.T) {

	// a 1 pixel tall frame leaves no rows after cropping
	img := gocv.NewMatWithSize(1, 100, gocv.MatTypeCV8UC3)
	defer img.Close()

	if _, _, err := CropPlayArea(img, 0.9, 0.05); err == nil {
		t.Error("expected degenerate crop error, got none")
	}
}
