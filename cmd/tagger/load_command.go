package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tagger/internal/config"
	"tagger/internal/file"
	"tagger/internal/release"
	"tagger/internal/session"
	"tagger/internal/tagger"
)

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var saveFlag bool
	var saveSessionFlag bool

	cmd := &cobra.Command{
		Use:   "load <release-id> <path>...",
		Short: "Load a release and match local files onto its tracks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseID := args[0]
			return ctx.withController(func(cfg *config.Config, ctrl *tagger.Controller) error {
				paths, err := collectAudioFiles(args[1:])
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					return fmt.Errorf("no audio files under %v", args[1:])
				}
				records, err := addAndSettle(ctrl, paths)
				if err != nil {
					return err
				}

				var album *release.Album
				loaded := make(chan struct{})
				if err := ctrl.PostWait(func() {
					album = ctrl.LoadAlbum(releaseID)
					if album == nil {
						close(loaded)
						return
					}
					ctrl.MoveFilesToAlbum(records, album)
					album.RunWhenLoaded(func() { close(loaded) }, true)
				}); err != nil {
					return err
				}
				if album == nil {
					return fmt.Errorf("%q is not a valid release id", releaseID)
				}
				select {
				case <-loaded:
				case <-time.After(2 * time.Minute):
					return fmt.Errorf("timed out loading release %s", releaseID)
				}

				var loadErr error
				if err := ctrl.PostWait(func() {
					if album.Status() == release.StatusError {
						loadErr = fmt.Errorf("could not load release %s", album.ID)
						for _, e := range album.Errors {
							loadErr = fmt.Errorf("%w: %v", loadErr, e)
						}
					}
				}); err != nil {
					return err
				}
				if loadErr != nil {
					return loadErr
				}

				if err := printAlbum(cmd, ctrl, album); err != nil {
					return err
				}
				if saveFlag {
					if err := saveAlbumFiles(cmd, ctrl, album); err != nil {
						return err
					}
				}
				if saveSessionFlag {
					return saveSession(cmd, ctx, ctrl)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&saveFlag, "save", false, "Write matched tags back to the files")
	cmd.Flags().BoolVar(&saveSessionFlag, "save-session", false, "Persist the workspace layout for later restore")
	return cmd
}

func saveSession(cmd *cobra.Command, ctx *commandContext, ctrl *tagger.Controller) error {
	return ctx.withSessionStore(func(store *session.Store) error {
		var snap *session.Snapshot
		if err := ctrl.PostWait(func() {
			snap = ctrl.Snapshot()
		}); err != nil {
			return err
		}
		if err := store.Save(cmd.Context(), snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "session saved to %s\n", store.Path())
		return nil
	})
}

func printAlbum(cmd *cobra.Command, ctrl *tagger.Controller, album *release.Album) error {
	var (
		title, artist string
		rows          [][]string
		unmatched     int
	)
	if err := ctrl.PostWait(func() {
		title = album.Title()
		artist = album.Artist()
		for _, t := range album.Tracks {
			row := []string{
				t.Metadata.Get("discnumber") + "." + t.Metadata.Get("tracknumber"),
				t.Metadata.Get("title"),
				formatDuration(t.Metadata.Length),
				"",
				"",
			}
			if files := t.Files(); len(files) > 0 {
				row[3] = files[0].Filename
				row[4] = fmt.Sprintf("%.0f%%", files[0].Similarity*100)
			}
			rows = append(rows, row)
		}
		unmatched = album.Unmatched.Len()
	}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s - %s\n", artist, title)
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"#", "Title", "Length", "File", "Match"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight},
	))
	if unmatched > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) did not match any track\n", unmatched)
	}
	return nil
}

func saveAlbumFiles(cmd *cobra.Command, ctrl *tagger.Controller, album *release.Album) error {
	var records []*file.Record
	if err := ctrl.PostWait(func() {
		for _, t := range album.Tracks {
			records = append(records, t.Files()...)
		}
		ctrl.SaveFiles(records)
	}); err != nil {
		return err
	}

	deadline := time.Now().Add(2 * time.Minute)
	for {
		done := true
		failed := 0
		if err := ctrl.PostWait(func() {
			for _, r := range records {
				switch {
				case r.State() == file.StateError:
					failed++
				case !r.IsSaved():
					done = false
				}
			}
		}); err != nil {
			return err
		}
		if done {
			if failed > 0 {
				return fmt.Errorf("%d file(s) failed to save", failed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d file(s)\n", len(records))
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out saving %d files", len(records))
		}
		time.Sleep(50 * time.Millisecond)
	}
}
