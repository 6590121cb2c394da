//go:build !windows

package diag

import "errors"

var errWindowsOnly = errors.New("diag: adapter inventory requires windows")

func Adapters() ([]Adapter, error) { return nil, errWindowsOnly }

func VideoControllers() ([]VideoController, error) { return nil, errWindowsOnly }

func Collect() (Report, error) { return Report{}, errWindowsOnly }
