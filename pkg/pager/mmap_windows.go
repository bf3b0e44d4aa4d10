//go:build windows

// pkg/pager/mmap_windows.go
package pager

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapRef is the Windows file-mapping handle backing a view.
type mapRef struct {
	handle windows.Handle
}

func mapFile(f *os.File, size int64) (mapRef, []byte, error) {
	handle, err := windows.CreateFileMapping(
		windows.Handle(f.Fd()),
		nil,
		windows.PAGE_READWRITE,
		uint32(size>>32),
		uint32(size&0xFFFFFFFF),
		nil,
	)
	if err != nil {
		return mapRef{}, nil, err
	}

	addr, err := windows.MapViewOfFile(
		handle,
		windows.FILE_MAP_READ|windows.FILE_MAP_WRITE,
		0, 0,
		uintptr(size),
	)
	if err != nil {
		windows.CloseHandle(handle)
		return mapRef{}, nil, err
	}

	return mapRef{handle: handle}, unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// unmapFile drops the view and its mapping handle. The handle must be gone
// before the file can be resized.
func unmapFile(ref mapRef, data []byte) error {
	if len(data) > 0 {
		if err := windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&data[0]))); err != nil {
			return err
		}
	}
	return windows.CloseHandle(ref.handle)
}

func flushMap(_ mapRef, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return windows.FlushViewOfFile(uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)))
}
