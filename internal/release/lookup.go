package release

import (
	"tagger/internal/catalog"
	"tagger/internal/cluster"
	"tagger/internal/metadata"
)

// clusterMatchWeights score a cluster against a release search result.
// The album title dominates; track count and date break near-ties.
var clusterMatchWeights = []metadata.FieldWeight{
	{Field: "album", Weight: 17},
	{Field: "albumartist", Weight: 6},
	{Field: "totaltracks", Weight: 5},
	{Field: "date", Weight: 4},
}

// ScoreClusterRelease computes how well a search result matches a
// cluster's inferred identity. Fields the cluster lacks are skipped
// rather than penalized.
func ScoreClusterRelease(c *cluster.Cluster, rel *catalog.Release, scorer metadata.Scorer) float64 {
	m := metadata.New()
	m.Set("album", rel.Title)
	if name, _ := catalog.CreditedName(rel.ArtistCredit); name != "" {
		m.Set("albumartist", name)
	}
	trackCount := rel.TrackCount
	if trackCount == 0 {
		for _, medium := range rel.Media {
			trackCount += medium.TrackCount
		}
	}
	if trackCount > 0 {
		m.SetInt("totaltracks", trackCount)
	}
	if rel.Date != "" {
		m.Set("date", rel.Date)
	}
	return c.Metadata.Compare(m, scorer, clusterMatchWeights)
}
