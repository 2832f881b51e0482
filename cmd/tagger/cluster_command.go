package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagger/internal/cluster"
	"tagger/internal/config"
	"tagger/internal/tagger"
)

func newClusterCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cluster <path>...",
		Short: "Group local files into album clusters by their tags",
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

				var (
					clusters  []*cluster.Cluster
					rows      [][]string
					leftovers int
				)
				if err := ctrl.PostWait(func() {
					ctrl.ClusterFiles()
					clusters = ctrl.Clusters()
					for _, cl := range clusters {
						rows = append(rows, []string{
							cl.Name(),
							cl.Artist(),
							fmt.Sprintf("%d", cl.Len()),
							formatDuration(cl.Metadata.Length),
						})
					}
					leftovers = ctrl.Unclustered().Len()
				}); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Album", "Artist", "Files", "Length"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				))
				fmt.Fprintf(cmd.OutOrStdout(), "%d cluster(s), %d file(s) left unclustered\n",
					len(clusters), leftovers)
				return nil
			})
		},
	}
}
