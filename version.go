// Package zmkgen scaffolds and maintains ZMK firmware config repositories.
package zmkgen

// Version is the zmkgen release, set at build time with
// -ldflags "-X github.com/simonhull/zmkgen.Version=...".
var Version = "0.1.0-dev"
