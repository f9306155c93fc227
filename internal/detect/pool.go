package detect

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// instance is a single model runtime dispensed by the pool.
type instance interface {
	Detect(img gocv.Mat) ([]Object, error)
	Close() error
}

// Pool maintains a fixed set of model instances dispensed over a channel.
// A cv::dnn forward pass is not safe for concurrent invocation on one Net,
// so each request checks an instance out for the duration of its inference
// call. Requests beyond the pool size queue on the channel.
type Pool struct {
	mu        sync.Mutex
	detectors chan instance
	names     ClassNames
	size      int
	closed    bool
}

// NewPool loads the labels file once and opens size instances of the model.
func NewPool(size int, modelFile, labelFile string, params YOLOPoseParams) (*Pool, error) {

	names, err := LoadLabels(labelFile)

	if err != nil {
		return nil, err
	}

	p := newPool(size, names)

	for i := 0; i < size; i++ {
		d, err := NewYOLOPose(modelFile, names, params)

		if err != nil {
			// close any instances that may have been created before
			// receiving the error
			p.Close()
			return nil, err
		}

		p.put(d)
	}

	return p, nil
}

// newPool creates an empty pool with capacity size. Instances are added
// with put.
func newPool(size int, names ClassNames) *Pool {
	return &Pool{
		detectors: make(chan instance, size),
		names:     names,
		size:      size,
	}
}

// Detect checks a model instance out of the pool, runs inference on the
// given frame, and returns the instance to the pool.
func (p *Pool) Detect(img gocv.Mat) ([]Object, error) {

	d, ok := <-p.detectors

	if !ok {
		return nil, errors.New("detector pool is closed")
	}

	defer p.put(d)

	return d.Detect(img)
}

// Names returns the class labels the pooled model was trained with.
func (p *Pool) Names() ClassNames {
	return p.names
}

// put returns an instance to the pool. Instances returned after Close,
// or beyond the pool's capacity, are closed instead.
func (p *Pool) put(d instance) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = d.Close()
		return
	}

	select {
	case p.detectors <- d:
	default:
		// pool is full
		_ = d.Close()
	}
}

// Close the pool and all model instances in it. Instances checked out at
// the time of the call are closed when they are returned.
func (p *Pool) Close() {

	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return
	}

	p.closed = true
	close(p.detectors)
	p.mu.Unlock()

	for next := range p.detectors {
		_ = next.Close()
	}
}
