// Package metadata implements the ordered, multi-valued tag container used
// by every entity in the tagger graph.
//
// A Container maps tag names to ordered lists of string values, tracks a
// duration in milliseconds, and carries cover-art references. Tag names
// beginning with '~' are internal: they are computed by the tagger, never
// written to files, and skipped by ApplyFunc. Containers are copied
// wholesale between entities (album metadata seeds track metadata, track
// metadata seeds file metadata); they are never shared by identity.
//
// Compare produces the weighted similarity score that drives file-to-track
// matching; Diff produces the change set shown to the user before saving.
package metadata
