// Command voxmerge merges audio transcriptions back into exported chat
// transcripts and consolidates the results across contacts.
package main
