// Package detect is the object detection boundary of the piece check
// service. It wraps a YOLO pose model run through the OpenCV DNN module
// and exposes the detections in the coordinate space of the image given
// to it.
package detect

import (
	"gocv.io/x/gocv"
)

// BoxRect are the bounding box dimensions of a detected object location.
type BoxRect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Point is a single 2D position in image pixel coordinates.
type Point struct {
	X float32
	Y float32
}

// Object is one detection reported by the model.
type Object struct {
	// Class is the line number in the labels file the model was trained on
	// defining the class of the detected object
	Class int
	// Name is the class label, or "class_{id}" when the id is not covered
	// by the labels file
	Name string
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Confidence is the score of the object detected, in [0,1]
	Confidence float32
	// KeyPoints are the model's keypoints for the object. It is nil when
	// the model carries no keypoint head.
	KeyPoints []Point
}

// Detector runs object detection over a single frame. Detections are
// returned in the coordinate space of the given image, ordered by
// descending confidence. Implementations must be safe for concurrent use.
type Detector interface {
	Detect(img gocv.Mat) ([]Object, error)
}
