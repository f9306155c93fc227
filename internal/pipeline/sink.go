package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Sink records annotated frames for later inspection. The pipeline calls
// it once per completed request and never depends on the result.
type Sink interface {
	Record(img gocv.Mat, tag string)
}

// FileSink writes frames as JPEG files named "{tag}_{timestamp}.jpg"
// under a single directory. Timestamps have one second resolution, so
// near-simultaneous writes with the same tag may overwrite each other.
type FileSink struct {
	dir string
	log *zap.Logger
}

// NewFileSink creates the output directory if needed.
func NewFileSink(dir string, log *zap.Logger) (*FileSink, error) {

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating save dir: %w", err)
	}

	return &FileSink{dir: dir, log: log}, nil
}

// Record writes the frame. Failures are logged, never surfaced to the
// request.
func (s *FileSink) Record(img gocv.Mat, tag string) {

	name := filepath.Join(s.dir,
		fmt.Sprintf("%s_%s.jpg", tag, time.Now().Format("20060102_150405")))

	if ok := gocv.IMWrite(name, img); !ok {
		s.log.Warn("failed to save debug frame", zap.String("file", name))
	}
}

// DiscardSink drops every frame. Used in tests.
type DiscardSink struct{}

func (DiscardSink) Record(gocv.Mat, string) {}
