//go:build darwin

package tellcore

// defaultModuleName is the framework path the official telldus-core macOS
// installer uses.
const defaultModuleName = "/Library/Frameworks/TelldusCore.framework/TelldusCore"
