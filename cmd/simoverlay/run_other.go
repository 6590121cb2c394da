//go:build !windows

package main

import "errors"

func runOverlay() error {
	return errors.New("simoverlay run: present hooking requires windows; control commands work from any platform")
}
