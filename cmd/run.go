package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/johnconna/pyforce-evaluation-v2/internal/domain"
	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

var runParallelFlag int
var suffixFilterFlag string
var ignoreSuffixFlag []string
var scanToolFlag string
var scanTimeoutFlag int64

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the batch scan over the source directory",
		Long:  runLongDescription,
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := buildWorkflow().Run(context.Background(), domain.RunArgs{
				Source:       sourcePath(),
				Harvest:      m.Path(viper.GetString(harvestFlagName)),
				Reports:      m.Path(viper.GetString(outputFlagName)),
				SuffixFilter: viper.GetString(suffixFilterConfigKey),
				Threads:      viper.GetInt(runParallelConfigKey),
			})

			return err
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p",
		viper.GetInt(runParallelConfigKey),
		"number of parallel extraction workers (harvest writes stay serialized)")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().StringVar(&suffixFilterFlag, suffixFilterFlagName,
		viper.GetString(suffixFilterConfigKey),
		"suffix selecting the files to harvest")
	bindFlagToConfig(cmd.Flags().Lookup(suffixFilterFlagName), suffixFilterConfigKey)

	cmd.Flags().StringArrayVarP(&ignoreSuffixFlag, ignoreFlagName, "x",
		viper.GetStringSlice(ignoreConfigKey),
		"skip source files with this suffix before detection (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(ignoreFlagName), ignoreConfigKey)

	cmd.Flags().StringVar(&scanToolFlag, scanToolFlagName,
		viper.GetString(scanToolConfigKey),
		"scanner binary to invoke against the harvest tree")
	bindFlagToConfig(cmd.Flags().Lookup(scanToolFlagName), scanToolConfigKey)

	cmd.Flags().Int64Var(&scanTimeoutFlag, scanTimeoutFlagName,
		viper.GetInt64(scanTimeoutConfigKey),
		"per-package scanner timeout in seconds")
	bindFlagToConfig(cmd.Flags().Lookup(scanTimeoutFlagName), scanTimeoutConfigKey)
}
