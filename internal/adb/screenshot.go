package adb

import (
	"context"
	"fmt"
)

// Screenshot holds a captured device screenshot.
type Screenshot struct {
	// PNG is the raw screencap output.
	PNG []byte
}

// Screenshot captures the device screen as PNG bytes. exec-out streams the
// image directly, avoiding a round trip through device storage.
func (c *Controller) Screenshot(ctx context.Context, serial string) (*Screenshot, error) {
	data, err := c.runner.RunBytes(ctx, serial, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("screencap produced no data")
	}
	return &Screenshot{PNG: data}, nil
}
