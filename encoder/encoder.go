package encoder

import "fmt"

// Capture parameters expected by the transcription service. The
// recorder always asks the platform for this shape; the encoders
// assume it.
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder packages raw PCM16 samples into an upload-ready container.
// Blocks arrive in capture order; Bytes is valid only after Close.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
}

// New returns an encoder for the given container format.
func New(format string) (Encoder, error) {
	switch format {
	case "wav":
		return NewWav(), nil
	case "flac":
		return NewFlac()
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// ContentType maps a container format to its upload MIME type.
func ContentType(format string) string {
	if format == "flac" {
		return "audio/flac"
	}
	return "audio/wav"
}
