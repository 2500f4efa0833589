// cmd/chunkalign/main.go
package main

import (
	cmd "github.com/mwiater/chunkalign/internal/cli"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the chunkalign CLI application by delegating to the
// cobra root command defined in the chunkalign package.
func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
