package cluster

import (
	"tagger/internal/file"
)

// Options configure one partitioning run.
type Options struct {
	// Threshold is the minimum token similarity for two names to share a
	// bin.
	Threshold float64
	// VariousArtists labels groups whose files carry no clusterable
	// artist at all.
	VariousArtists string
	// DirectoryHints derives candidate names from path segments when the
	// album tag is missing.
	DirectoryHints bool
	// Score compares two normalized tokens; required.
	Score Scorer
}

// Group is one inferred (album, artist) bucket of files.
type Group struct {
	Album  string
	Artist string
	Files  []*file.Record
}

// Partition groups files into inferred album/artist buckets. Both word
// dictionaries are built fresh from the input, so successive runs over a
// changed file set are independent. Files whose album name never binned
// are excluded from the result entirely; they stay available for manual
// placement or another round.
func Partition(files []*file.Record, opts Options) []Group {
	albumDict := NewDict()
	artistDict := NewDict()

	type fileIDs struct {
		artist int
		album  int
	}
	ids := make([]fileIDs, len(files))

	for i, f := range files {
		artist := f.Metadata.Get("albumartist")
		if artist == "" {
			artist = f.Metadata.Get("artist")
		}
		album := f.Metadata.Get("album")
		if opts.DirectoryHints {
			album, artist = AlbumArtistFromPath(f.Filename, album, artist)
		}
		ids[i] = fileIDs{artist: artistDict.Add(artist), album: albumDict.Add(album)}
	}

	artistEngine := NewEngine(artistDict)
	artistEngine.Run(opts.Threshold, opts.Score)
	albumEngine := NewEngine(albumDict)
	albumEngine.Run(opts.Threshold, opts.Score)

	// Group file indexes by album bin, keeping first-appearance order.
	var binOrder []int
	members := make(map[int][]int)
	for i, id := range ids {
		if id.album < 0 {
			continue
		}
		bin, ok := albumEngine.BinOf(id.album)
		if !ok {
			continue
		}
		if _, seen := members[bin]; !seen {
			binOrder = append(binOrder, bin)
		}
		members[bin] = append(members[bin], i)
	}

	groups := make([]Group, 0, len(binOrder))
	for _, bin := range binOrder {
		indexes := members[bin]

		// Representative artist: the most frequent artist bin, first to
		// reach the maximum winning ties.
		artistMax := 0
		artistBin := -1
		hist := make(map[int]int)
		for _, i := range indexes {
			id := ids[i].artist
			if id < 0 {
				continue
			}
			b, ok := artistEngine.BinOf(id)
			if !ok {
				continue
			}
			hist[b]++
			if hist[b] > artistMax {
				artistMax = hist[b]
				artistBin = b
			}
		}

		artistName := opts.VariousArtists
		if artistBin >= 0 {
			artistName = artistEngine.Title(artistBin)
		}

		records := make([]*file.Record, 0, len(indexes))
		for _, i := range indexes {
			records = append(records, files[i])
		}
		groups = append(groups, Group{
			Album:  albumEngine.Title(bin),
			Artist: artistName,
			Files:  records,
		})
	}
	return groups
}
