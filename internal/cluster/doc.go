// Package cluster groups ungrouped files into inferred (album, artist)
// buckets without any catalog lookup.
//
// The partitioning works on two independent word dictionaries, one for
// album names and one for artist names. Each distinct raw string gets a
// stable integer id plus a normalized token used only for similarity
// comparison. Per dictionary, ids are clustered by greedy single-link
// merging of similar pairs, processed best-pair first via a min-heap
// keyed by distance. Files are then grouped by album bin, with the most
// frequent artist bin labeling each group.
//
// A bin only forms from a pair, or from a raw string seen more than
// once. A truly unique album name therefore never clusters and its files
// are excluded from the output; that is a property of the algorithm, not
// a defect, and callers route such files to the unclustered pool.
//
// The Cluster type itself is the file container: either a bucket
// produced by partitioning, or one of the special pools (the global
// unclustered files and each album's unmatched files).
package cluster
