package detect

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// letterBox handles scaling a source frame to the square model input size
// whilst maintaining image aspect. The padding and scale factor are kept
// so detections can be mapped back into the source frame.
type letterBox struct {
	srcWidth  int
	srcHeight int
	destSize  int
	xPad      int
	yPad      int
	scale     float32
	resizeW   int
	resizeH   int
}

// newLetterBox precalculates the scaling dimensions for resizing a
// srcWidth x srcHeight frame to a destSize x destSize model input.
func newLetterBox(srcWidth, srcHeight, destSize int) letterBox {

	l := letterBox{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		destSize:  destSize,
		resizeW:   destSize,
		resizeH:   destSize,
	}

	scaleW := float32(destSize) / float32(srcWidth)
	scaleH := float32(destSize) / float32(srcHeight)
	l.scale = scaleH

	if scaleW < scaleH {
		l.scale = scaleW
		l.resizeH = int(float32(srcHeight) * l.scale)
	} else {
		l.resizeW = int(float32(srcWidth) * l.scale)
	}

	l.yPad = (destSize - l.resizeH) / 2
	l.xPad = (destSize - l.resizeW) / 2

	return l
}

// resize scales src into dest with constant color borders padding out the
// unused area.
func (l letterBox) resize(src gocv.Mat, dest *gocv.Mat, clr color.RGBA) {

	tmp := gocv.NewMat()
	defer tmp.Close()

	gocv.Resize(src, &tmp, image.Pt(l.resizeW, l.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(tmp, dest, l.yPad, l.destSize-l.resizeH-l.yPad,
		l.xPad, l.destSize-l.resizeW-l.xPad, gocv.BorderConstant, clr)
}

// toSrcX maps an x coordinate in model input space back to the source frame.
func (l letterBox) toSrcX(x float32) float32 {
	return (x - float32(l.xPad)) / l.scale
}

// toSrcY maps a y coordinate in model input space back to the source frame.
func (l letterBox) toSrcY(y float32) float32 {
	return (y - float32(l.yPad)) / l.scale
}

// clamp restricts the value to be within the range min and max
func clamp(val float32, min, max int) float32 {

	if val > float32(min) {

		if val < float32(max) {
			return val
		}

		return float32(max)
	}

	return float32(min)
}
