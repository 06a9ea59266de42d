// Package poster composes app.bsky.feed.post records and submits them to a PDS.
//
// Composition is degrade-gracefully: if a link card cannot be built, or the
// PDS rejects the record, the link is appended to the post text as a plain
// URL (with a link facet) so it is never lost.
package poster
