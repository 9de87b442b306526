package slidezone

import "fmt"

// Version information for slidezone.
const (
	VersionMajor = 0
	VersionMinor = 3
	VersionPatch = 0
)

// Version is the full version string, reported by the slidezone command.
var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
