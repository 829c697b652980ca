package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"parrot/encoder"
	"parrot/log"
	"parrot/session"
)

// Recorder implements session.Recorder over a capture context: it
// opens the microphone at the transcription service's expected shape,
// funnels PCM through an encoder, and hands back the finished
// container on stop.
type Recorder struct {
	ctx    Context
	device *DeviceInfo
	format string

	mu      sync.Mutex
	capture CaptureDevice

	// bufMu guards the sample path; capture callbacks take only this
	// lock, so Stop can drain them without deadlocking.
	bufMu     sync.Mutex
	enc       encoder.Encoder
	sampleBuf []int16
	encodeErr error
}

func NewRecorder(ctx Context, device *DeviceInfo, format string) *Recorder {
	return &Recorder{ctx: ctx, device: device, format: format}
}

func (r *Recorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capture != nil {
		return fmt.Errorf("capture already running")
	}

	enc, err := encoder.New(r.format)
	if err != nil {
		return err
	}
	r.bufMu.Lock()
	r.enc = enc
	r.sampleBuf = nil
	r.encodeErr = nil
	r.bufMu.Unlock()

	preferred := CaptureConfig{SampleRate: encoder.SampleRate, Channels: encoder.Channels}
	capture, err := r.ctx.NewCapture(r.device, preferred, r.feed)
	if err != nil {
		// Some platforms refuse the 16kHz mono shape; retry with the
		// platform default before giving up.
		log.Warnf("capture config %+v refused (%v), retrying with default", preferred, err)
		capture, err = r.ctx.NewCapture(r.device, CaptureConfig{}, r.feed)
		if err != nil {
			return classifyOpenErr(err)
		}
	}

	if err := capture.Start(); err != nil {
		capture.Close()
		return classifyOpenErr(err)
	}
	r.capture = capture
	return nil
}

func (r *Recorder) feed(data []byte, _ uint32) {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	if r.enc == nil {
		return
	}
	for i := 0; i+1 < len(data); i += 2 {
		r.sampleBuf = append(r.sampleBuf, int16(binary.LittleEndian.Uint16(data[i:])))
	}
	for len(r.sampleBuf) >= encoder.BlockSize {
		block := make([]int16, encoder.BlockSize)
		copy(block, r.sampleBuf[:encoder.BlockSize])
		r.sampleBuf = r.sampleBuf[encoder.BlockSize:]
		if err := r.enc.EncodeBlock(block); err != nil && r.encodeErr == nil {
			r.encodeErr = err
		}
	}
}

func (r *Recorder) Stop() ([]byte, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capture == nil {
		return nil, "", fmt.Errorf("capture not running")
	}
	r.capture.Stop()
	r.capture.Close()
	r.capture = nil

	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	enc := r.enc
	r.enc = nil

	// Flush the partial tail block.
	if len(r.sampleBuf) > 0 {
		partial := make([]int16, len(r.sampleBuf))
		copy(partial, r.sampleBuf)
		r.sampleBuf = nil
		if err := enc.EncodeBlock(partial); err != nil && r.encodeErr == nil {
			r.encodeErr = err
		}
	}
	if r.encodeErr != nil {
		return nil, "", fmt.Errorf("encoding capture: %w", r.encodeErr)
	}
	if err := enc.Close(); err != nil {
		return nil, "", fmt.Errorf("finishing %s stream: %w", r.format, err)
	}
	return enc.Bytes(), r.format, nil
}

func classifyOpenErr(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "access denied") {
		return fmt.Errorf("%w: %v", session.ErrPermissionDenied, err)
	}
	return fmt.Errorf("opening capture: %w", err)
}
