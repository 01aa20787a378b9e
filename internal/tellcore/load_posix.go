//go:build darwin || linux || freebsd

package tellcore

import "github.com/ebitengine/purego"

// dlopenBinder resolves symbols in a dlopen'ed module via purego. Symbols
// are probed with dlsym first so that entry points missing from older
// telldus-core versions are skipped instead of faulting at bind time.
type dlopenBinder struct {
	handle uintptr
}

func (b *dlopenBinder) bind(name string, fn any) bool {
	sym, err := purego.Dlsym(b.handle, name)
	if err != nil || sym == 0 {
		return false
	}
	purego.RegisterLibFunc(fn, b.handle, name)
	return true
}

// loadNativeModule loads the shared library and returns a symbol binder plus
// an unload function.
func loadNativeModule(name string) (symbolBinder, func() error, error) {
	handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, nil, err
	}
	return &dlopenBinder{handle: handle}, func() error { return purego.Dlclose(handle) }, nil
}
