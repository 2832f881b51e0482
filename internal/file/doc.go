// Package file models one audio file inside the tagger workspace.
//
// A Record owns the file's editable metadata and the original metadata
// read from disk, tracks its lifecycle state, and carries a back-pointer
// to whichever container (cluster or track) currently holds it. The
// at-most-one-container invariant is enforced by Move: the only way a
// record changes hands is an atomic detach from the old holder followed
// by an attach to the new one, always on the control goroutine.
//
// Records start Pending until their tags are read. Callers that need the
// file to be ready register a continuation with WhenReady instead of
// polling the state.
package file
