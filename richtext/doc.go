// Package richtext detects mentions and links in post text and turns them into app.bsky.richtext.facet annotations.
//
// All offsets are byte offsets into the UTF-8 encoding of the text, which is
// the indexing convention of the facet lexicon. Mention and link detection
// are independent passes over the same text: spans of different kinds may
// overlap, and no attempt is made to reconcile them. Rejecting malformed
// facet lists is left to the PDS.
package richtext
