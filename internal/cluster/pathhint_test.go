package cluster

import "testing"

func TestAlbumArtistFromPath(t *testing.T) {
	cases := []struct {
		name       string
		filename   string
		album      string
		artist     string
		wantAlbum  string
		wantArtist string
	}{
		{
			name:       "tags win",
			filename:   "/music/Artist/Album/01.mp3",
			album:      "Tagged Album",
			artist:     "Tagged Artist",
			wantAlbum:  "Tagged Album",
			wantArtist: "Tagged Artist",
		},
		{
			name:       "artist and album from dirs",
			filename:   "/music/Radiohead/OK Computer/01.mp3",
			album:      "",
			artist:     "",
			wantAlbum:  "OK Computer",
			wantArtist: "Radiohead",
		},
		{
			name:       "dash separated dir",
			filename:   "/music/Radiohead - OK Computer/01.mp3",
			album:      "",
			artist:     "",
			wantAlbum:  "OK Computer",
			wantArtist: "Radiohead",
		},
		{
			name:       "disc subdirectory skipped",
			filename:   "/music/Radiohead/OK Computer/CD 1/01.mp3",
			album:      "",
			artist:     "",
			wantAlbum:  "OK Computer",
			wantArtist: "Radiohead",
		},
		{
			name:       "artist kept when only album missing",
			filename:   "/music/Somewhere/Live at Leeds/01.mp3",
			album:      "",
			artist:     "The Who",
			wantAlbum:  "Live at Leeds",
			wantArtist: "The Who",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			album, artist := AlbumArtistFromPath(tc.filename, tc.album, tc.artist)
			if album != tc.wantAlbum || artist != tc.wantArtist {
				t.Fatalf("got (%q, %q), want (%q, %q)", album, artist, tc.wantAlbum, tc.wantArtist)
			}
		})
	}
}
