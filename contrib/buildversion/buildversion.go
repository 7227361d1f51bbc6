package buildversion

import (
	"runtime/debug"
)

// GetVersion resolves the module version for the named module from the build
// info of the running binary.  It returns an empty string when the binary was
// built without module support or the module cannot be found.
func GetVersion(modulePath string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	if info.Main.Path == modulePath {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		return ""
	}

	for _, dep := range info.Deps {
		if dep == nil {
			continue
		}
		if dep.Path == modulePath {
			return dep.Version
		}
	}

	return ""
}
