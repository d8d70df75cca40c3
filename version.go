package abacus

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release version of abacus.
var Version = strings.TrimSpace(rawVersion)
