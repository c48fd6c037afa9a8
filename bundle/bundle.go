// Package bundle embeds the rego modules evaluated by the host rules.
package bundle

import "embed"

// Bundle holds every *.rego file of this directory
//
//go:embed *.rego
var Bundle embed.FS
