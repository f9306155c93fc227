package detect

import (
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

// fakeInstance stands in for a loaded model so the pool mechanics can be
// tested without model files
type fakeInstance struct {
	mu      sync.Mutex
	detects int
	closed  bool
}

func (f *fakeInstance) Detect(img gocv.Mat) ([]Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detects++
	return []Object{{Name: "wheel", Confidence: 0.9}}, nil
}

func (f *fakeInstance) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeInstance) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newFakePool(size int) (*Pool, []*fakeInstance) {

	p := newPool(size, ClassNames{"wheel"})

	fakes := make([]*fakeInstance, size)

	for i := range fakes {
		fakes[i] = &fakeInstance{}
		p.put(fakes[i])
	}

	return p, fakes
}

func TestPoolReturnsInstanceAfterDetect(t *testing.T) {

	p, fakes := newFakePool(1)
	defer p.Close()

	// with one instance, back to back calls only succeed if each call
	// returns the instance to the pool
	for i := 0; i < 3; i++ {
		if _, err := p.Detect(gocv.Mat{}); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}

	if fakes[0].detects != 3 {
		t.Errorf("expected 3 inference calls, got %d", fakes[0].detects)
	}
}

func TestPoolBlocksWhenExhausted(t *testing.T) {

	p, _ := newFakePool(1)
	defer p.Close()

	// drain the pool
	d := <-p.detectors

	done := make(chan struct{})

	go func() {
		_, _ = p.Detect(gocv.Mat{})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Detect completed with no instance available")
	case <-time.After(50 * time.Millisecond):
	}

	p.put(d)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Detect did not proceed after an instance was returned")
	}
}

func TestPoolCloseClosesAllInstances(t *testing.T) {

	p, fakes := newFakePool(2)

	p.Close()

	for i, f := range fakes {
		if !f.isClosed() {
			t.Errorf("instance %d not closed", i)
		}
	}

	if _, err := p.Detect(gocv.Mat{}); err == nil {
		t.Error("expected an error from Detect on a closed pool")
	}

	// closing twice must be a no-op
	p.Close()
}

func TestPoolCloseWithInstanceCheckedOut(t *testing.T) {

	p, fakes := newFakePool(1)

	d := <-p.detectors

	p.Close()

	if fakes[0].isClosed() {
		t.Fatal("checked out instance closed while still in use")
	}

	// returning after close must close the instance, not panic
	p.put(d)

	if !fakes[0].isClosed() {
		t.Error("instance not closed when returned to a closed pool")
	}
}
