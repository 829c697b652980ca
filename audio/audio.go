// Package audio abstracts microphone capture so the session engine
// and tests never touch a platform audio API directly.
package audio

// DataCallback receives raw little-endian PCM16 capture data.
type DataCallback func(data []byte, frameCount uint32)

// CaptureConfig requests a capture shape. Zero values mean "platform
// default".
type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig, cb DataCallback) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
}
