package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tagger/internal/config"
	"tagger/internal/release"
	"tagger/internal/session"
	"tagger/internal/tagger"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage the saved workspace session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSessionShowCommand(ctx))
	cmd.AddCommand(newSessionRestoreCommand(ctx))
	cmd.AddCommand(newSessionClearCommand(ctx))
	return cmd
}

func (c *commandContext) withSessionStore(fn func(*session.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := session.Open(cfg.Session.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved session layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSessionStore(func(store *session.Store) error {
				snap, err := store.Load(cmd.Context())
				if err != nil {
					return err
				}
				if snap.SavedAt.IsZero() {
					fmt.Fprintln(cmd.OutOrStdout(), "no saved session")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "session saved %s, %d album(s), %d file(s)\n",
					snap.SavedAt.Local().Format("2006-01-02 15:04:05"),
					len(snap.Albums), len(snap.Files))

				rows := make([][]string, 0, len(snap.Files))
				for _, fp := range snap.Files {
					where := string(fp.Kind)
					switch fp.Kind {
					case session.PlacementCluster:
						where = fmt.Sprintf("cluster %s - %s", fp.ClusterArtist, fp.ClusterName)
					case session.PlacementAlbum:
						where = "album " + fp.AlbumID
					case session.PlacementTrack:
						where = fmt.Sprintf("album %s recording %s", fp.AlbumID, fp.RecordingID)
					case session.PlacementNonAlbum:
						where = "recording " + fp.RecordingID
					}
					rows = append(rows, []string{fp.Path, where})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"File", "Placement"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newSessionRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Rebuild the workspace from the saved session and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap *session.Snapshot
			if err := ctx.withSessionStore(func(store *session.Store) error {
				var err error
				snap, err = store.Load(cmd.Context())
				return err
			}); err != nil {
				return err
			}
			if snap.SavedAt.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "no saved session")
				return nil
			}

			return ctx.withController(func(cfg *config.Config, ctrl *tagger.Controller) error {
				if err := ctrl.PostWait(func() {
					ctrl.Restore(snap)
				}); err != nil {
					return err
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
				for _, album := range albums {
					if err := printAlbum(cmd, ctrl, album); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newSessionClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the saved session layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSessionStore(func(store *session.Store) error {
				if err := store.Save(cmd.Context(), &session.Snapshot{}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "session cleared")
				return nil
			})
		},
	}
}
