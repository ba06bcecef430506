package parley

// Version is the release of this module. Overridden at link time by release builds
// with -ldflags "-X github.com/aretw0/parley.Version=...".
var Version = "0.3.0"
