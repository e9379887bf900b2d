// Package ioctl wraps the ioctl system call.
package ioctl

import (
	"fmt"
	"reflect"
	"syscall"
)

// Direction is the data transfer direction encoded in a Command.
type Direction uint8

// Directions
const (
	None Direction = iota
	Write
	Read
)

// Command is an encoded ioctl request.
type Command uintptr

func (c Command) String() string {
	var (
		dir  = Direction(c >> 30 & 0x03)
		size = c >> 16 & 0x3fff
		nr   = c & 0xffff
		str  string
	)
	if dir&Write > 0 {
		str += " write"
	}
	if dir&Read > 0 {
		str += " read "
	}
	return fmt.Sprintf("ioctl%s (%d bytes) 0x%04x", str, size, uintptr(nr))
}

// New encodes an ioctl request number.
func New(dir Direction, size uint16, nr uintptr) Command {
	return Command(dir)<<30 | Command(size)<<16 | Command(nr)
}

// Sized encodes an ioctl request number, taking the transfer size from the
// value ref points at.
func Sized(dir Direction, ref interface{}, nr uintptr) Command {
	size := uint16(reflect.TypeOf(ref).Elem().Size())
	return New(dir, size, nr)
}

// Do executes the request with a pointer argument.
func Do(fd uintptr, command Command, ptr interface{}) error {
	var p uintptr

	if ptr != nil {
		v := reflect.ValueOf(ptr)
		p = v.Pointer()
	}

	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, uintptr(command), p)
	if errno != 0 {
		return fmt.Errorf("ioctl %s failed: %v", command, errno)
	}
	return nil
}
