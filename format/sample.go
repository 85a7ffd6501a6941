// Package format defines the enumerations and type constraints shared by the btw packages.
package format

// Sample is the set of integer types a sample buffer can be stored in.
//
// uint8 is used for 8-bit (or narrower) unsigned PCM, int16 and int32 for signed PCM.
// The choice is made per call through type instantiation, so a single build can serve
// every bit depth.
type Sample interface {
	~uint8 | ~int16 | ~int32
}
