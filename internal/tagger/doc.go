// Package tagger hosts the workspace controller: the registries of
// files, clusters, albums, and release groups, and the operations that
// move items between them.
//
// The controller owns the engine's control goroutine. Operations
// mutate the object graph and must run on that goroutine; external
// callers submit work through Post and PostWait.
package tagger
