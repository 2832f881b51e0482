package release

import (
	"strings"

	"tagger/internal/catalog"
	"tagger/internal/metadata"
)

// VariousArtistsID is the catalog's synthetic artist for compilations.
const VariousArtistsID = "89ad4ac3-39f7-470e-963a-56509c546377"

// Titles the catalog uses for placeholder tracks.
const (
	DataTrackTitle    = "[data track]"
	SilenceTrackTitle = "[silence]"
)

func creditToMetadata(credits []catalog.ArtistCredit, m *metadata.Container, prefix string) {
	if len(credits) == 0 {
		return
	}
	name, sortName := catalog.CreditedName(credits)
	m.Set(prefix+"artist", name)
	m.Set(prefix+"artistsort", sortName)
	m.Set("musicbrainz_"+prefix+"artistid", catalog.CreditedIDs(credits)...)
}

func releaseGroupToMetadata(node *catalog.ReleaseGroupNode, m *metadata.Container) {
	m.Set("musicbrainz_releasegroupid", node.ID)
	if node.Title != "" {
		m.Set("~releasegroup", node.Title)
	}
	if node.FirstReleaseDate != "" {
		m.Set("originaldate", node.FirstReleaseDate)
		if len(node.FirstReleaseDate) >= 4 {
			m.Set("originalyear", node.FirstReleaseDate[:4])
		}
	}
	types := make([]string, 0, 1+len(node.SecondaryTypes))
	if node.PrimaryType != "" {
		types = append(types, strings.ToLower(node.PrimaryType))
	}
	for _, t := range node.SecondaryTypes {
		types = append(types, strings.ToLower(t))
	}
	if len(types) > 0 {
		m.Set("releasetype", types...)
		m.Set("~primaryreleasetype", types[0])
	}
	if len(node.SecondaryTypes) > 0 {
		m.Set("~secondaryreleasetype", types[len(types)-len(node.SecondaryTypes):]...)
	}
	creditToMetadata(node.ArtistCredit, m, "album")
}

func releaseToMetadata(rel *catalog.Release, m *metadata.Container) {
	m.Set("musicbrainz_albumid", rel.ID)
	m.Set("album", rel.Title)
	if rel.Disambiguation != "" {
		m.Set("~releasecomment", rel.Disambiguation)
	}
	if rel.Status != "" {
		m.Set("releasestatus", strings.ToLower(rel.Status))
	}
	if rel.Date != "" {
		m.Set("date", rel.Date)
	}
	if rel.Country != "" {
		m.Set("releasecountry", rel.Country)
	}
	if rel.Barcode != "" {
		m.Set("barcode", rel.Barcode)
	}
	if rel.Asin != "" {
		m.Set("asin", rel.Asin)
	}
	for _, label := range rel.Labels {
		if label.Name != "" {
			m.AddUnique("label", label.Name)
		}
		if label.CatalogNumber != "" {
			m.AddUnique("catalognumber", label.CatalogNumber)
		}
	}
	creditToMetadata(rel.ArtistCredit, m, "album")
}

func mediumToMetadata(medium *catalog.Medium, m *metadata.Container) {
	m.SetInt("discnumber", medium.Position)
	m.SetInt("totaltracks", medium.TrackCount)
	if medium.Format != "" {
		m.Set("media", medium.Format)
	}
	if medium.Title != "" {
		m.Set("discsubtitle", medium.Title)
	}
	if len(medium.DiscIDs) > 0 {
		m.Set("~musicbrainz_discids", medium.DiscIDs...)
	}
}

// trackToMetadata fills track-specific tags from a track node. The
// medium-level tags are expected to already be present.
func trackToMetadata(node *catalog.TrackNode, m *metadata.Container) {
	m.Set("musicbrainz_trackid", node.ID)
	m.Set("musicbrainz_recordingid", node.Recording.ID)
	title := node.Title
	if title == "" {
		title = node.Recording.Title
	}
	m.Set("title", title)
	if node.Recording.Disambiguation != "" {
		m.Set("~recordingcomment", node.Recording.Disambiguation)
	}
	if node.Position > 0 {
		m.SetInt("tracknumber", node.Position)
	}
	if node.Number != "" {
		m.Set("~musicbrainz_tracknumber", node.Number)
	}
	length := node.Length
	if length == 0 {
		length = node.Recording.Length
	}
	m.Length = length
	credits := node.ArtistCredit
	if len(credits) == 0 {
		credits = node.Recording.ArtistCredit
	}
	creditToMetadata(credits, m, "")
	if node.Recording.Video {
		m.Set("~video", "1")
	}
}

// recordingToMetadata fills tags from a standalone recording document,
// used for non-album tracks that have no release context.
func recordingToMetadata(rec *catalog.Recording, m *metadata.Container) {
	m.Set("musicbrainz_recordingid", rec.ID)
	m.Set("title", rec.Title)
	if rec.Disambiguation != "" {
		m.Set("~recordingcomment", rec.Disambiguation)
	}
	m.Length = rec.Length
	creditToMetadata(rec.ArtistCredit, m, "")
	if rec.Video {
		m.Set("~video", "1")
	}
}
