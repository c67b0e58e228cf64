// Package model defines the domain types and value objects for the
// qemu-eos-builder CLI.
//
// This package contains pure data structures with no external dependencies:
// the Version triple read from a Qemu source checkout, the Recipe selected
// for it, and the single InstallerError type every component reports
// failures with. None of these values are persisted; each run of the tool
// reconstructs them from the source tree.
//
// The package also defines exit codes (ExitCode) used by the CLI layer to
// translate an InstallerError into an OS process exit status.
package model
