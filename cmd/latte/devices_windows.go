//go:build windows

package main

import (
	"fmt"

	"github.com/latte-ml/latte/internal/backend/cpu"
	"github.com/latte-ml/latte/internal/backend/webgpu"
)

func printDevices() {
	fmt.Printf("host: %s\n", cpu.New().Name())

	if !webgpu.IsAvailable() {
		fmt.Println("accelerator: none (wgpu_native not found)")
		return
	}
	dev, err := webgpu.New()
	if err != nil {
		fmt.Printf("accelerator: unavailable (%v)\n", err)
		return
	}
	fmt.Printf("accelerator: %s\n", dev.Name())
	if rel, ok := dev.(interface{ Release() }); ok {
		rel.Release()
	}
}
