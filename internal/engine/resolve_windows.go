//go:build windows

package engine

import "github.com/simwidget/overlay/internal/hook"

func defaultResolve(family hook.Family) (hook.Addresses, error) {
	return hook.Resolve(family)
}
