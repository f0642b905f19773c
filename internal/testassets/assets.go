package testassets

import "embed"

// Projects holds small annotated Go projects, one directory each, shared by the
// generator, dev and command tests.
//
//go:embed testdata
var Projects embed.FS
