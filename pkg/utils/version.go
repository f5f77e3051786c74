// Package utils holds small one-off helpers that have no better home.
package utils

// Build identity, stamped through -ldflags at release time; the version
// command prints these.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
