//go:build windows

package tellcore

import (
	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

// defaultModuleName is the DLL name the Telldus Center installer registers on
// the library search path.
const defaultModuleName = "TelldusCore.dll"

// procBinder resolves symbols in a loaded DLL. Symbols are probed with
// GetProcAddress first so entry points missing from older telldus-core
// versions are skipped instead of faulting at bind time.
type procBinder struct {
	handle windows.Handle
}

func (b *procBinder) bind(name string, fn any) bool {
	proc, err := windows.GetProcAddress(b.handle, name)
	if err != nil || proc == 0 {
		return false
	}
	purego.RegisterLibFunc(fn, uintptr(b.handle), name)
	return true
}

// loadNativeModule loads the DLL and returns a symbol binder plus an unload
// function.
func loadNativeModule(name string) (symbolBinder, func() error, error) {
	handle, err := windows.LoadLibrary(name)
	if err != nil {
		return nil, nil, err
	}
	return &procBinder{handle: handle}, func() error { return windows.FreeLibrary(handle) }, nil
}
