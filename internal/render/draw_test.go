package render

import (
	"testing"

	"gocv.io/x/gocv"

	"github.com/bricklab/piececheck/internal/detect"
)

var testObj = detect.Object{
	Name:       "wheel",
	Confidence: 0.87,
	Box:        detect.BoxRect{Left: 20, Top: 30, Right: 80, Bottom: 90},
}

func TestAllDetectionsLeavesSourceUntouched(t *testing.T) {

	src := gocv.NewMatWithSize(120, 120, gocv.MatTypeCV8UC3)
	defer src.Close()

	out := AllDetections(src, []detect.Object{testObj})
	defer out.Close()

	// source stays black, the copy carries the box
	if v := src.GetVecbAt(30, 20); v[0] != 0 || v[1] != 0 || v[2] != 0 {
		t.Error("source frame was modified by annotation")
	}

	if v := out.GetVecbAt(30, 20); v[0] == 0 && v[1] == 0 && v[2] == 0 {
		t.Error("expected a box edge drawn on the annotated copy")
	}
}

func TestMatchDrawsCenterMarker(t *testing.T) {

	src := gocv.NewMatWithSize(120, 120, gocv.MatTypeCV8UC3)
	defer src.Close()

	center := detect.Point{X: 50, Y: 60}

	out := Match(src, testObj, center, true)
	defer out.Close()

	if v := out.GetVecbAt(60, 50); v[0] == 0 && v[1] == 0 && v[2] == 0 {
		t.Error("expected a filled marker at the center")
	}

	// without a center the marker pixel stays untouched
	plain := Match(src, testObj, detect.Point{}, false)
	defer plain.Close()

	if v := plain.GetVecbAt(60, 50); v[0] != 0 || v[1] != 0 || v[2] != 0 {
		t.Error("no marker should be drawn without a center")
	}
}

func TestLabelClampedToTopEdge(t *testing.T) {

	src := gocv.NewMatWithSize(120, 120, gocv.MatTypeCV8UC3)
	defer src.Close()

	// box touching the top edge forces the label into the frame
	obj := detect.Object{
		Name:       "wheel",
		Confidence: 0.5,
		Box:        detect.BoxRect{Left: 10, Top: 2, Right: 100, Bottom: 60},
	}

	out := Match(src, obj, detect.Point{}, false)
	defer out.Close()

	if out.Rows() != src.Rows() || out.Cols() != src.Cols() {
		t.Error("annotation must not change frame dimensions")
	}
}

func TestPlainIsACopy(t *testing.T) {

	src := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8UC3)
	defer src.Close()

	out := Plain(src)
	defer out.Close()

	// writing to the copy must not show through to the source
	out.SetUCharAt(10, 10, 255)

	if src.GetUCharAt(10, 10) != 0 {
		t.Error("Plain must return a copy, not a view of the source frame")
	}
}
