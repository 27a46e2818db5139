//go:build windows

package tilestore

import (
	"io"
	"os"
)

// Windows reads the file into memory; the views behave the same.
func mmapFile(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func munmap([]byte) error {
	return nil
}
