package tellcore

import (
	"fmt"
	"sync"
)

// Logger is the optional logging interface used for dispatch and teardown
// diagnostics. Compatible with logging.Logger and *slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// session is one generation of the loaded native library: the span between a
// load+tdInit and the matching tdClose. All Library instances in the process
// share the single live session; refs counts them.
type session struct {
	funcs  functionTable
	bridge *callbackBridge
	unload func() error
	refs   int
}

var (
	// sessionMu guards the process-wide session pointer and its ref count.
	sessionMu sync.Mutex
	current   *session
)

// openNativeModule is swapped out by tests to avoid loading a real shared
// library. The production implementation is platform-specific (dlopen on
// POSIX, LoadLibrary on Windows).
var openNativeModule = loadNativeModule

// acquire returns the live session, creating and initialising one when none
// exists. moduleName selects the shared library; empty means the platform
// default. tdInit runs exactly once per generation, on the instance that
// triggered the load.
func acquire(moduleName string) (*session, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	if current == nil {
		if moduleName == "" {
			moduleName = defaultModuleName
		}
		binder, unload, err := openNativeModule(moduleName)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, moduleName, err)
		}
		s := &session{unload: unload}
		s.funcs.bindAll(binder)
		s.bridge = newCallbackBridge(s)
		if s.funcs.tdInit != nil {
			s.funcs.tdInit()
		}
		current = s
	}
	current.refs++
	return current, nil
}

// release decrements the session ref count. When it reaches zero the session
// unregisters any remaining callbacks, closes the native library and clears
// the process-wide handle so a later acquire loads from scratch.
//
// Releasing more times than acquired is a programming error and panics.
func (s *session) release() {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	if current != s || s.refs <= 0 {
		panic("tellcore: release without matching acquire")
	}
	s.refs--
	if s.refs > 0 {
		return
	}

	// Last instance: best-effort cleanup of every registration still alive
	// in this generation, before the native close call.
	s.bridge.unregisterAll()

	// telldus-core before 2.1.2 (which introduced tdController) cannot
	// re-initialise after tdClose (Telldus ticket 188). Skip the close call
	// on those versions.
	if s.funcs.tdController != nil && s.funcs.tdClose != nil {
		s.funcs.tdClose()
	}
	if s.unload != nil {
		_ = s.unload()
	}
	current = nil
}

// callError builds a CallError for a native result code, attaching the
// human-readable message from tdGetErrorString when available.
func (s *session) callError(code ErrorCode) error {
	return &CallError{Code: code, Message: s.errorString(code)}
}

// errorString fetches the native description for a code. The returned C
// string is subject to the same release discipline as every other string the
// native library hands out.
func (s *session) errorString(code ErrorCode) string {
	f := s.funcs.tdGetErrorString
	if f == nil {
		return ""
	}
	return s.takeString(f(int32(code)))
}

// takeString copies a native-owned string and releases it exactly once.
// A nil native pointer yields the empty string with no release call.
func (s *session) takeString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	str := goString(ptr)
	if f := s.funcs.tdReleaseString; f != nil {
		f(ptr)
	}
	return str
}
