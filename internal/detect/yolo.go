package detect

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"
)

// YOLOPoseParams defines the struct containing the parameters to use for
// post processing the model output
type YOLOPoseParams struct {
	// BoxThreshold is the minimum confidence score required for a bounding
	// box to be considered for processing
	BoxThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for
	// defining the maximum allowed Intersection Over Union (IoU) between
	// two bounding boxes for both to be kept
	NMSThreshold float32
	// InputSize is the square pixel size of the model input tensor
	InputSize int
	// MaxObjectNumber is the maximum number of detected objects returned
	MaxObjectNumber int
}

// DefaultYOLOPoseParams returns an instance of YOLOPoseParams configured
// with default values:
// - Box Threshold: 0.25
// - NMS Threshold: 0.45
// - Input Size: 640
// - Maximum Object Number: 64
func DefaultYOLOPoseParams() YOLOPoseParams {
	return YOLOPoseParams{
		BoxThreshold:    0.25,
		NMSThreshold:    0.45,
		InputSize:       640,
		MaxObjectNumber: 64,
	}
}

var padColor = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// YOLOPose runs a YOLOv8 pose model exported to ONNX through the OpenCV
// DNN module. A single instance serializes its forward passes, use a Pool
// to serve concurrent callers.
type YOLOPose struct {
	net      gocv.Net
	params   YOLOPoseParams
	names    ClassNames
	outNames []string
}

// NewYOLOPose loads the ONNX model from the given file. The class names
// provide the id to label mapping the model was trained with.
func NewYOLOPose(modelFile string, names ClassNames, params YOLOPoseParams) (*YOLOPose, error) {

	net := gocv.ReadNetFromONNX(modelFile)

	if net.Empty() {
		return nil, fmt.Errorf("error loading model from %s", modelFile)
	}

	// resolve output layer names for the forward pass
	var outNames []string

	for _, idx := range net.GetUnconnectedOutLayers() {
		layer := net.GetLayer(idx)
		outNames = append(outNames, layer.GetName())
		layer.Close()
	}

	if len(outNames) == 0 {
		net.Close()
		return nil, fmt.Errorf("model %s has no output layers", modelFile)
	}

	return &YOLOPose{
		net:      net,
		params:   params,
		names:    names,
		outNames: outNames,
	}, nil
}

// Close frees the loaded model
func (y *YOLOPose) Close() error {
	return y.net.Close()
}

// candidate holds an intermediate detection in model input coordinates
// before NMS filtering
type candidate struct {
	box       image.Rectangle
	conf      float32
	class     int
	keyPoints []Point
}

// Detect runs inference on the given frame and returns the detected
// objects in the frame's coordinate space, ordered by descending
// confidence.
func (y *YOLOPose) Detect(img gocv.Mat) ([]Object, error) {

	if img.Empty() {
		return nil, fmt.Errorf("empty input image")
	}

	lb := newLetterBox(img.Cols(), img.Rows(), y.params.InputSize)

	boxed := gocv.NewMat()
	defer boxed.Close()
	lb.resize(img, &boxed, padColor)

	blob := gocv.BlobFromImage(boxed, 1.0/255.0,
		image.Pt(y.params.InputSize, y.params.InputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	y.net.SetInput(blob, "")

	outputs := y.net.ForwardLayers(y.outNames)

	defer func() {
		for _, out := range outputs {
			out.Close()
		}
	}()

	if len(outputs) == 0 {
		return nil, fmt.Errorf("model forward pass produced no outputs")
	}

	return y.postProcess(outputs[0], lb)
}

// postProcess decodes the raw output tensor of shape [1, 4+C+3K, N] where
// C is the class count and K the keypoint count, applies class-wise NMS
// and maps coordinates back into the source frame.
func (y *YOLOPose) postProcess(out gocv.Mat, lb letterBox) ([]Object, error) {

	dims := out.Size()

	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output tensor shape %v", dims)
	}

	attrs := dims[1]
	boxCount := dims[2]
	classNum := len(y.names)

	// keypoint attributes are (x, y, score) triplets after the box and
	// class score columns.  A plain detection model has none.
	kpNum := (attrs - 4 - classNum) / 3

	if classNum == 0 || attrs < 4+classNum {
		return nil, fmt.Errorf("output tensor has %d attributes for %d classes", attrs, classNum)
	}

	// models authored by ultralytics put attributes on the second axis, so
	// transpose to get one detection per row
	trans := gocv.NewMat()
	defer trans.Close()
	gocv.TransposeND(out, []int{0, 2, 1}, &trans)

	rows := trans.Reshape(1, boxCount)
	defer rows.Close()

	cands := make([]candidate, 0)

	for i := 0; i < boxCount; i++ {

		// highest scoring class for this box
		maxClassProb := rows.GetFloatAt(i, 4)
		maxClassID := 0

		for k := 1; k < classNum; k++ {
			prob := rows.GetFloatAt(i, 4+k)
			if prob > maxClassProb {
				maxClassID = k
				maxClassProb = prob
			}
		}

		if maxClassProb < y.params.BoxThreshold {
			continue
		}

		// box is center x, center y, width, height in input space
		cx := rows.GetFloatAt(i, 0)
		cy := rows.GetFloatAt(i, 1)
		halfW := rows.GetFloatAt(i, 2) / 2.0
		halfH := rows.GetFloatAt(i, 3) / 2.0

		var keyPoints []Point

		for k := 0; k < kpNum; k++ {
			keyPoints = append(keyPoints, Point{
				X: rows.GetFloatAt(i, 4+classNum+k*3),
				Y: rows.GetFloatAt(i, 4+classNum+k*3+1),
			})
		}

		cands = append(cands, candidate{
			box: image.Rect(int(cx-halfW), int(cy-halfH),
				int(cx+halfW), int(cy+halfH)),
			conf:      maxClassProb,
			class:     maxClassID,
			keyPoints: keyPoints,
		})
	}

	if len(cands) == 0 {
		return nil, nil
	}

	// create a unique set of class ids found, then run NMS over each class
	// so overlapping objects of different classes are all kept
	classSet := make(map[int]bool)

	for _, c := range cands {
		classSet[c.class] = true
	}

	var keep []int

	for c := range classSet {

		var boxes []image.Rectangle
		var scores []float32
		var indices []int

		for i, cand := range cands {
			if cand.class != c {
				continue
			}
			boxes = append(boxes, cand.box)
			scores = append(scores, cand.conf)
			indices = append(indices, i)
		}

		for _, j := range gocv.NMSBoxes(boxes, scores,
			y.params.BoxThreshold, y.params.NMSThreshold) {
			keep = append(keep, indices[j])
		}
	}

	sort.SliceStable(keep, func(a, b int) bool {
		return cands[keep[a]].conf > cands[keep[b]].conf
	})

	if len(keep) > y.params.MaxObjectNumber {
		keep = keep[:y.params.MaxObjectNumber]
	}

	// collate objects, mapping coordinates back into the source frame
	objs := make([]Object, 0, len(keep))

	for _, i := range keep {
		cand := cands[i]

		obj := Object{
			Class:      cand.class,
			Name:       y.names.Name(cand.class),
			Confidence: cand.conf,
			Box: BoxRect{
				Left:   int(clamp(lb.toSrcX(float32(cand.box.Min.X)), 0, lb.srcWidth)),
				Top:    int(clamp(lb.toSrcY(float32(cand.box.Min.Y)), 0, lb.srcHeight)),
				Right:  int(clamp(lb.toSrcX(float32(cand.box.Max.X)), 0, lb.srcWidth)),
				Bottom: int(clamp(lb.toSrcY(float32(cand.box.Max.Y)), 0, lb.srcHeight)),
			},
		}

		for _, kp := range cand.keyPoints {
			obj.KeyPoints = append(obj.KeyPoints, Point{
				X: lb.toSrcX(kp.X),
				Y: lb.toSrcY(kp.Y),
			})
		}

		objs = append(objs, obj)
	}

	return objs, nil
}
