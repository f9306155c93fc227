package pipeline

import (
	"github.com/bricklab/piececheck/internal/detect"
)

// SelectBestMatch filters the detections to those whose class name equals
// expectedClass and returns the one with the highest confidence. Ties
// resolve to the earliest detection in the detector's ordering, so
// selection is stable for identical inputs. found is false when no
// detection carries the expected class, regardless of what else was
// detected.
func SelectBestMatch(objs []detect.Object, expectedClass string) (detect.Object, bool) {

	var best detect.Object
	found := false

	for _, obj := range objs {

		if obj.Name != expectedClass {
			continue
		}

		if !found || obj.Confidence > best.Confidence {
			best = obj
			found = true
		}
	}

	return best, found
}
