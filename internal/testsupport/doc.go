// Package testsupport provides shared fixtures: a canned catalog
// client, an in-memory codec, deterministic release documents, and
// controller plumbing helpers.
package testsupport
