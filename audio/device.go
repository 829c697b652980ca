package audio

import (
	"fmt"
	"strings"
)

// FindDevice matches a capture device by case-insensitive substring.
// An empty name selects the system default (nil device).
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	if name == "" {
		return nil, nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	lower := strings.ToLower(name)
	for i, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), lower) {
			return &devices[i], nil
		}
	}

	var names []string
	for _, d := range devices {
		names = append(names, d.Name)
	}
	return nil, fmt.Errorf("no capture device matching %q (have: %s)", name, strings.Join(names, ", "))
}
