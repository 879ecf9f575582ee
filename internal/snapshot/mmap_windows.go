//go:build windows

package snapshot

import (
	"fmt"
	"os"
	"reflect"
	"syscall"
	"unsafe"
)

func mmapFile(f *os.File, size int64) ([]byte, error) {
	handle, err := syscall.CreateFileMapping(
		syscall.Handle(f.Fd()),
		nil,
		syscall.PAGE_READONLY,
		uint32(size>>32),
		uint32(size),
		nil,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = syscall.CloseHandle(handle)
	}()

	addr, err := syscall.MapViewOfFile(
		handle,
		syscall.FILE_MAP_READ,
		0,
		0,
		uintptr(size),
	)
	if err != nil {
		return nil, err
	}

	// addr comes from MapViewOfFile and covers exactly size bytes, so the
	// constructed slice header is valid for the lifetime of the mapping.
	var slice []byte
	//nolint:staticcheck // SA1019: SliceHeader is the standard mmap pattern on Windows
	header := (*reflect.SliceHeader)(unsafe.Pointer(&slice))
	header.Data = addr
	header.Len = int(size)
	header.Cap = int(size)

	return slice, nil
}

func munmapFile(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("cannot unmap empty data")
	}
	//nolint:staticcheck // SA1019: SliceHeader is the standard mmap pattern on Windows
	header := (*reflect.SliceHeader)(unsafe.Pointer(&data))
	return syscall.UnmapViewOfFile(header.Data)
}
