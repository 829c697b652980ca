package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"parrot/encoder"
	"parrot/session"
)

func pcmFor(nSamples int) []byte {
	pcm := make([]byte, nSamples*2)
	for i := range nSamples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(i%1000))
	}
	return pcm
}

func TestRecorderRoundTrip(t *testing.T) {
	nSamples := encoder.BlockSize + encoder.BlockSize/2
	fc := NewFakeContext(pcmFor(nSamples))
	r := NewRecorder(fc, nil, "wav")

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	data, format, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if format != "wav" {
		t.Errorf("format = %q, want wav", format)
	}
	if string(data[0:4]) != "RIFF" {
		t.Errorf("missing RIFF header")
	}
	// Header plus every captured sample, including the partial tail
	// block.
	if wantLen := 44 + nSamples*2; len(data) != wantLen {
		t.Errorf("len = %d, want %d", len(data), wantLen)
	}
}

func TestRecorderDoubleStart(t *testing.T) {
	fc := NewFakeContext(pcmFor(16))
	r := NewRecorder(fc, nil, "wav")

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail")
	}
}

func TestRecorderStopWithoutStart(t *testing.T) {
	r := NewRecorder(NewFakeContext(nil), nil, "wav")
	if _, _, err := r.Stop(); err == nil {
		t.Fatal("Stop without Start should fail")
	}
}

func TestRecorderFallsBackToDefaultConfig(t *testing.T) {
	fc := NewFakeContext(pcmFor(16))
	fc.OpenErr = errors.New("unsupported sample rate")
	fc.OpenErrs = 1 // only the preferred shape fails

	r := NewRecorder(fc, nil, "wav")
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start with fallback: %v", err)
	}
	if fc.Opens() != 2 {
		t.Errorf("opens = %d, want 2", fc.Opens())
	}
	if _, _, err := r.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestRecorderPermissionDenied(t *testing.T) {
	fc := NewFakeContext(nil)
	fc.OpenErr = errors.New("microphone access denied by user")

	r := NewRecorder(fc, nil, "wav")
	err := r.Start(context.Background())
	if !errors.Is(err, session.ErrPermissionDenied) {
		t.Fatalf("Start = %v, want ErrPermissionDenied", err)
	}
}

func TestRecorderRestartsAfterStop(t *testing.T) {
	fc := NewFakeContext(pcmFor(encoder.BlockSize))
	r := NewRecorder(fc, nil, "wav")

	for i := range 2 {
		if err := r.Start(context.Background()); err != nil {
			t.Fatalf("Start %d: %v", i, err)
		}
		data, _, err := r.Stop()
		if err != nil {
			t.Fatalf("Stop %d: %v", i, err)
		}
		if wantLen := 44 + encoder.BlockSize*2; len(data) != wantLen {
			t.Errorf("run %d: len = %d, want %d", i, len(data), wantLen)
		}
	}
}

func TestFindDevice(t *testing.T) {
	fc := NewFakeContext(nil)

	dev, err := FindDevice(fc, "")
	if err != nil || dev != nil {
		t.Errorf("empty name = (%v, %v), want system default", dev, err)
	}

	dev, err = FindDevice(fc, "FAKE")
	if err != nil {
		t.Fatal(err)
	}
	if dev == nil || dev.ID != "fake" {
		t.Errorf("got %+v", dev)
	}

	if _, err := FindDevice(fc, "studio mic"); err == nil {
		t.Error("expected error for unknown device")
	}
}
