//go:build linux || freebsd

package tellcore

// defaultModuleName is the versioned shared object telldus-core installs on
// Linux and the BSDs.
const defaultModuleName = "libtelldus-core.so.2"
