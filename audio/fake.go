package audio

import (
	"sync"
)

const fakeChunkFrames = 1024

// FakeContext replays canned PCM16 through the capture interfaces so
// recorder tests run without a microphone.
type FakeContext struct {
	pcm []byte

	// OpenErr, when non-nil, makes NewCapture fail with it. OpenErrs
	// limits the failures to the first n opens, so fallback paths can
	// be exercised.
	OpenErr  error
	OpenErrs int

	mu    sync.Mutex
	opens int
}

func NewFakeContext(pcm []byte) *FakeContext {
	return &FakeContext{pcm: pcm}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake microphone"}}, nil
}

func (f *FakeContext) Close() {}

// Opens reports how many captures were requested, including failed
// ones.
func (f *FakeContext) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig, cb DataCallback) (CaptureDevice, error) {
	f.mu.Lock()
	f.opens++
	opens := f.opens
	f.mu.Unlock()

	if f.OpenErr != nil && (f.OpenErrs == 0 || opens <= f.OpenErrs) {
		return nil, f.OpenErr
	}
	return &fakeCapture{pcm: f.pcm, cb: cb}, nil
}

type fakeCapture struct {
	pcm []byte
	cb  DataCallback
}

// Start feeds the whole canned recording synchronously, chunked the
// way a real device would deliver it.
func (c *fakeCapture) Start() error {
	chunkBytes := fakeChunkFrames * 2
	for pos := 0; pos < len(c.pcm); pos += chunkBytes {
		end := min(pos+chunkBytes, len(c.pcm))
		chunk := make([]byte, end-pos)
		copy(chunk, c.pcm[pos:end])
		c.cb(chunk, uint32(len(chunk)/2))
	}
	return nil
}

func (c *fakeCapture) Stop()  {}
func (c *fakeCapture) Close() {}
