//go:build !windows

package engine

import (
	"errors"

	"github.com/simwidget/overlay/internal/hook"
)

func defaultResolve(hook.Family) (hook.Addresses, error) {
	return hook.Addresses{}, errors.New("engine: present hooking requires windows")
}
