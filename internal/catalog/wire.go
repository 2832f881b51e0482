package catalog

// Wire shapes for the web service's JSON documents. Only the fields
// the engine consumes are mapped; everything else is dropped during
// decoding.

type wsArtist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SortName string `json:"sort-name"`
}

type wsArtistCredit struct {
	Name       string   `json:"name"`
	JoinPhrase string   `json:"joinphrase"`
	Artist     wsArtist `json:"artist"`
}

type wsReleaseGroup struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	PrimaryType      string           `json:"primary-type"`
	SecondaryTypes   []string         `json:"secondary-types"`
	FirstReleaseDate string           `json:"first-release-date"`
	ArtistCredit     []wsArtistCredit `json:"artist-credit"`
}

type wsRecording struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Length         int64            `json:"length"`
	Video          bool             `json:"video"`
	Disambiguation string           `json:"disambiguation"`
	ArtistCredit   []wsArtistCredit `json:"artist-credit"`
}

type wsTrack struct {
	ID           string           `json:"id"`
	Position     int              `json:"position"`
	Number       string           `json:"number"`
	Title        string           `json:"title"`
	Length       int64            `json:"length"`
	ArtistCredit []wsArtistCredit `json:"artist-credit"`
	Recording    wsRecording      `json:"recording"`
}

type wsDisc struct {
	ID string `json:"id"`
}

type wsMedium struct {
	Position   int       `json:"position"`
	Format     string    `json:"format"`
	Title      string    `json:"title"`
	TrackCount int       `json:"track-count"`
	Pregap     *wsTrack  `json:"pregap"`
	Tracks     []wsTrack `json:"tracks"`
	DataTracks []wsTrack `json:"data-tracks"`
	Discs      []wsDisc  `json:"discs"`
}

type wsLabelInfo struct {
	CatalogNumber string `json:"catalog-number"`
	Label         struct {
		Name string `json:"name"`
	} `json:"label"`
}

type wsRelease struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Disambiguation string           `json:"disambiguation"`
	Status         string           `json:"status"`
	Date           string           `json:"date"`
	Country        string           `json:"country"`
	Barcode        string           `json:"barcode"`
	Asin           string           `json:"asin"`
	ArtistCredit   []wsArtistCredit `json:"artist-credit"`
	ReleaseGroup   wsReleaseGroup   `json:"release-group"`
	Media          []wsMedium       `json:"media"`
	LabelInfo      []wsLabelInfo    `json:"label-info"`
	TrackCount     int              `json:"track-count"`
}

type wsSearchResult struct {
	Count    int         `json:"count"`
	Releases []wsRelease `json:"releases"`
}

func toCredits(in []wsArtistCredit) []ArtistCredit {
	if len(in) == 0 {
		return nil
	}
	out := make([]ArtistCredit, len(in))
	for i, c := range in {
		out[i] = ArtistCredit{
			Name:       c.Name,
			JoinPhrase: c.JoinPhrase,
			Artist: Artist{
				ID:       c.Artist.ID,
				Name:     c.Artist.Name,
				SortName: c.Artist.SortName,
			},
		}
	}
	return out
}

func (r wsRecording) toRecording() Recording {
	return Recording{
		ID:             r.ID,
		Title:          r.Title,
		Length:         r.Length,
		Video:          r.Video,
		Disambiguation: r.Disambiguation,
		ArtistCredit:   toCredits(r.ArtistCredit),
	}
}

func (t wsTrack) toTrackNode() TrackNode {
	return TrackNode{
		ID:           t.ID,
		Position:     t.Position,
		Number:       t.Number,
		Title:        t.Title,
		Length:       t.Length,
		ArtistCredit: toCredits(t.ArtistCredit),
		Recording:    t.Recording.toRecording(),
	}
}

func (m wsMedium) toMedium() Medium {
	out := Medium{
		Position:   m.Position,
		Format:     m.Format,
		Title:      m.Title,
		TrackCount: m.TrackCount,
	}
	if m.Pregap != nil {
		node := m.Pregap.toTrackNode()
		out.Pregap = &node
	}
	for _, t := range m.Tracks {
		out.Tracks = append(out.Tracks, t.toTrackNode())
	}
	for _, t := range m.DataTracks {
		out.DataTracks = append(out.DataTracks, t.toTrackNode())
	}
	for _, d := range m.Discs {
		if d.ID != "" {
			out.DiscIDs = append(out.DiscIDs, d.ID)
		}
	}
	return out
}

func (r wsRelease) toRelease() *Release {
	rel := &Release{
		ID:             r.ID,
		Title:          r.Title,
		Disambiguation: r.Disambiguation,
		Status:         r.Status,
		Date:           r.Date,
		Country:        r.Country,
		Barcode:        r.Barcode,
		Asin:           r.Asin,
		ArtistCredit:   toCredits(r.ArtistCredit),
		ReleaseGroup: ReleaseGroupNode{
			ID:               r.ReleaseGroup.ID,
			Title:            r.ReleaseGroup.Title,
			PrimaryType:      r.ReleaseGroup.PrimaryType,
			SecondaryTypes:   r.ReleaseGroup.SecondaryTypes,
			FirstReleaseDate: r.ReleaseGroup.FirstReleaseDate,
			ArtistCredit:     toCredits(r.ReleaseGroup.ArtistCredit),
		},
		TrackCount: r.TrackCount,
	}
	for _, m := range r.Media {
		rel.Media = append(rel.Media, m.toMedium())
	}
	for _, li := range r.LabelInfo {
		rel.Labels = append(rel.Labels, LabelInfo{
			Name:          li.Label.Name,
			CatalogNumber: li.CatalogNumber,
		})
	}
	return rel
}
