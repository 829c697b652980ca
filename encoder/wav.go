package encoder

import (
	"encoding/binary"
)

const wavHeaderSize = 44

// WavEncoder frames PCM16 samples into a RIFF/WAVE container. It is
// pure container framing; the samples pass through untouched.
type WavEncoder struct {
	data        []byte
	totalFrames uint64
	closed      bool
}

func NewWav() *WavEncoder {
	// Reserve the header up front; sizes are patched in Close.
	return &WavEncoder{data: make([]byte, wavHeaderSize)}
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	for _, s := range block {
		e.data = binary.LittleEndian.AppendUint16(e.data, uint16(s))
	}
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	dataSize := uint32(len(e.data) - wavHeaderSize)
	h := e.data[:wavHeaderSize]

	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 36+dataSize)
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(h[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(h[22:24], Channels)
	binary.LittleEndian.PutUint32(h[24:28], SampleRate)
	byteRate := uint32(SampleRate * Channels * BitsPerSample / 8)
	binary.LittleEndian.PutUint32(h[28:32], byteRate)
	blockAlign := uint16(Channels * BitsPerSample / 8)
	binary.LittleEndian.PutUint16(h[32:34], blockAlign)
	binary.LittleEndian.PutUint16(h[34:36], BitsPerSample)

	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], dataSize)
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	return e.data
}

func (e *WavEncoder) TotalFrames() uint64 {
	return e.totalFrames
}
