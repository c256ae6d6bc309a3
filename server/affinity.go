//go:build !linux

package main

import "github.com/pkg/errors"

func pinToCore(cpu int) error {
	return errors.New("cpu affinity not supported on this platform")
}
