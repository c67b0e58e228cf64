// Package source inspects a Qemu-EOS source checkout.
//
// It validates that a directory looks like a real checkout (a directory
// containing .git), reads the release number from the VERSION marker
// file, and queries git for the checked-out commit. It never modifies
// the checkout.
package source
