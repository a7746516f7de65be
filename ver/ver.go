package ver

import (
	"fmt"
	"runtime"
)

// Filled in at build time through -ldflags.
var (
	// Git commit the binary was built from.
	Git string
	// Date of the build.
	Date string
)

// Version .
func Version() string {
	return fmt.Sprintf(`Git: %s
Compile: %s
Built: %s`, Git, runtime.Version(), Date)
}
