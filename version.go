package dyntext

import _ "embed"

// Version is the release of the library and the dyntext CLI.
//
//go:embed VERSION
var Version string
