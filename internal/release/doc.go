// Package release models albums, tracks, and release groups loaded
// from the catalog, together with the asynchronous load pipeline that
// turns a catalog release document into per-track metadata and the
// matcher that assigns files to tracks.
package release
