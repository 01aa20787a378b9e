package tellcore

import "unsafe"

// goString copies a NUL-terminated C string into a Go string. The pointer is
// only borrowed; the bytes are copied before returning. A zero pointer yields
// the empty string. telldus-core emits UTF-8, which is also Go's native
// string representation, so no transcoding is needed.
func goString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr) //nolint:govet // FFI boundary: ptr originates from native code
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// bufString decodes a native-filled output buffer up to its first NUL byte.
func bufString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// bufPtr returns the address of a buffer for use as a native out-parameter.
// The caller must keep the slice alive across the native call.
func bufPtr(buf []byte) unsafe.Pointer {
	return unsafe.Pointer(&buf[0])
}
