//go:build !windows

package main

import (
	"fmt"

	"github.com/latte-ml/latte/internal/backend/cpu"
)

func printDevices() {
	fmt.Printf("host: %s\n", cpu.New().Name())
	fmt.Println("accelerator: none (webgpu backend requires windows)")
}
