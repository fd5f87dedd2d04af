// ABOUTME: Version constants for the squeezebox module
// ABOUTME: Reported by lmsctl --version
package version

// Version is the module version, overridable at build time with
// -ldflags "-X .../internal/version.Version=...".
var Version = "0.1.0"

// Product is the name tools report to the user.
const Product = "squeezebox-go"
