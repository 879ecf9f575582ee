// Package main provides the latte command line tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"k8s.io/klog/v2"

	"github.com/latte-ml/latte/internal/snapshot"
)

const version = "v0.1.0-dev"

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return
	}

	switch args[0] {
	case "version":
		fmt.Printf("latte %s\n", version)
	case "devices":
		printDevices()
	case "inspect":
		if err := inspect(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "latte inspect: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("latte - tensor snapshot toolkit")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version                              Show version")
	fmt.Println("  devices                              List available compute devices")
	fmt.Println("  inspect [-skip-checksum] <file>      Describe a .latte snapshot")
}

func inspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	skipChecksum := fs.Bool("skip-checksum", false, "skip SHA-256 verification of the data section")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: latte inspect [-skip-checksum] <file>")
	}
	path := fs.Arg(0)

	r, err := snapshot.OpenWithOptions(path, snapshot.ReaderOptions{SkipChecksum: *skipChecksum})
	if err != nil {
		return err
	}
	defer r.Close()

	h := r.Header()
	fmt.Printf("%s: format v%d, created %s\n", path, h.FormatVersion, h.CreatedAt.Format(time.RFC3339))
	if *skipChecksum {
		fmt.Println("checksum: skipped")
	} else {
		fmt.Printf("checksum: ok (%x)\n", r.Checksum())
	}

	if len(h.Metadata) > 0 {
		keys := make([]string, 0, len(h.Metadata))
		for k := range h.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("metadata:")
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", k, h.Metadata[k])
		}
	}

	fmt.Printf("tensors (%d):\n", len(h.Tensors))
	for _, m := range h.Tensors {
		grad := ""
		if m.Gradients {
			grad = "  +gradients"
		}
		fmt.Printf("  %-32s %-8s %v  %d bytes%s\n", m.Name, m.DType, m.Shape, m.Size, grad)
	}
	return nil
}
