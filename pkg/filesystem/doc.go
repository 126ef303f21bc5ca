// Package filesystem provides the filesystem seam used by every confguard
// component. Production code uses NewOS; tests wrap it to inject failures at
// a chosen call.
package filesystem
