package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tagger/internal/config"
	"tagger/internal/release"
	"tagger/internal/tagger"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var saveFlag bool

	cmd := &cobra.Command{
		Use:   "lookup <path>...",
		Short: "Cluster local files and look the clusters up in the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withController(func(cfg *config.Config, ctrl *tagger.Controller) error {
				paths, err := collectAudioFiles(args)
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					return fmt.Errorf("no audio files under %v", args)
				}
				if _, err := addAndSettle(ctrl, paths); err != nil {
					return err
				}

				var lookups int
				if err := ctrl.PostWait(func() {
					ctrl.ClusterFiles()
					for _, cl := range ctrl.Clusters() {
						ctrl.LookupCluster(cl)
						lookups++
					}
				}); err != nil {
					return err
				}
				if lookups == 0 {
					return fmt.Errorf("no clusters to look up; files may be missing album tags")
				}

				if err := waitForQuiescence(ctrl, 3*time.Minute); err != nil {
					return err
				}

				var albums []*release.Album
				if err := ctrl.PostWait(func() {
					albums = ctrl.Albums()
				}); err != nil {
					return err
				}
				if len(albums) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no releases matched")
					return nil
				}
				for _, album := range albums {
					if err := printAlbum(cmd, ctrl, album); err != nil {
						return err
					}
					if saveFlag {
						if err := saveAlbumFiles(cmd, ctrl, album); err != nil {
							return err
						}
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&saveFlag, "save", false, "Write matched tags back to the files")
	return cmd
}

// waitForQuiescence polls until the album set is stable and every
// album has finished loading. Lookups that find nothing leave no album
// behind, so stability across two polls is the termination signal.
func waitForQuiescence(ctrl *tagger.Controller, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	stable := 0
	lastCount := -1
	for {
		count := 0
		allLoaded := true
		if err := ctrl.PostWait(func() {
			albums := ctrl.Albums()
			count = len(albums)
			for _, a := range albums {
				if !a.Loaded() {
					allLoaded = false
				}
			}
		}); err != nil {
			return err
		}
		if allLoaded && count == lastCount {
			stable++
			if stable >= 2 {
				return nil
			}
		} else {
			stable = 0
		}
		lastCount = count
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for catalog lookups")
		}
		time.Sleep(1500 * time.Millisecond)
	}
}
