// Package syntax validates the identifier and timestamp strings exchanged with a PDS: handles, DIDs and record datetimes.
//
// It checks syntax only; resolving a handle to a DID lives in the richtext and poster packages.
package syntax
