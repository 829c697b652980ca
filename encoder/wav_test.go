package encoder

import (
	"encoding/binary"
	"testing"
)

func TestWavHeader(t *testing.T) {
	e := NewWav()
	block := []int16{0, 100, -100, 32767, -32768}
	if err := e.EncodeBlock(block); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	data := e.Bytes()
	wantLen := wavHeaderSize + len(block)*2
	if len(data) != wantLen {
		t.Fatalf("len = %d, want %d", len(data), wantLen)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Errorf("bad container magic: %q %q", data[0:4], data[8:12])
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != Channels {
		t.Errorf("channels = %d, want %d", got, Channels)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(block)*2) {
		t.Errorf("data size = %d, want %d", got, len(block)*2)
	}
	if e.TotalFrames() != uint64(len(block)) {
		t.Errorf("TotalFrames = %d, want %d", e.TotalFrames(), len(block))
	}

	// Samples survive round-trip untouched.
	if got := int16(binary.LittleEndian.Uint16(data[wavHeaderSize+2:])); got != 100 {
		t.Errorf("sample[1] = %d, want 100", got)
	}
}

func TestWavCloseIdempotent(t *testing.T) {
	e := NewWav()
	if err := e.EncodeBlock([]int16{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(e.Bytes()[40:44]); got != 6 {
		t.Errorf("data size = %d, want 6", got)
	}
}

func TestNewEncoder(t *testing.T) {
	for _, format := range []string{"wav", "flac"} {
		t.Run(format, func(t *testing.T) {
			enc, err := New(format)
			if err != nil {
				t.Fatalf("New(%q): %v", format, err)
			}
			if enc == nil {
				t.Fatalf("New(%q) returned nil", format)
			}
		})
	}
	t.Run("unknown", func(t *testing.T) {
		if _, err := New("ogg"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestContentType(t *testing.T) {
	for _, tt := range []struct{ format, want string }{
		{"wav", "audio/wav"},
		{"flac", "audio/flac"},
	} {
		if got := ContentType(tt.format); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFlacEncodesBlocks(t *testing.T) {
	e, err := NewFlac()
	if err != nil {
		t.Fatal(err)
	}
	block := make([]int16, BlockSize)
	for i := range block {
		block[i] = int16(i % 512)
	}
	if err := e.EncodeBlock(block); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	data := e.Bytes()
	if len(data) < 4 || string(data[0:4]) != "fLaC" {
		t.Fatalf("missing fLaC magic, got %d bytes", len(data))
	}
	if e.TotalFrames() != BlockSize {
		t.Errorf("TotalFrames = %d, want %d", e.TotalFrames(), BlockSize)
	}
}
