// Package id3 reads ID3v2.3 and ID3v2.4 tags from the front of an audio file.
//
// Only the frames needed to recover podcast chapter metadata are decoded into
// typed values: text (T***), URL (W***), chapter (CHAP), table of contents
// (CTOC) and attached picture (APIC). Anything else comes back as an
// [UnknownFrame] carrying its raw body.
package id3
