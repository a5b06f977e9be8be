package adb

import (
	"context"
)

// uiDumpPath is where uiautomator writes the hierarchy on the device.
const uiDumpPath = "/sdcard/ui_dump.xml"

// DumpUIHierarchy dumps the current UI hierarchy with uiautomator and
// returns the raw XML. uiautomator cannot stream to stdout, so the dump
// goes through device storage and is read back with cat.
func (c *Controller) DumpUIHierarchy(ctx context.Context, serial string) (string, error) {
	if _, err := c.shell(ctx, serial, "uiautomator", "dump", uiDumpPath); err != nil {
		return "", err
	}
	return c.shell(ctx, serial, "cat", uiDumpPath)
}
