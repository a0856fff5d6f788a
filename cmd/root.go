// Package cmd provides the root command and CLI setup for pyforce.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/johnconna/pyforce-evaluation-v2/internal/adapter"
	"github.com/johnconna/pyforce-evaluation-v2/internal/controller"
	"github.com/johnconna/pyforce-evaluation-v2/internal/domain"
	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

var fsAdapter adapter.HarvestFSAdapter
var reportStore adapter.ReportStore
var ui controller.UI
var workflow domain.Workflow

// sourceDirFlag is the directory holding the input archives (read-only).
var sourceDirFlag string

// harvestDirFlag is the shared tree accumulating harvested source files.
var harvestDirFlag string

// reportsOutputDirFlag receives one report artifact per scanned package.
var reportsOutputDirFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

const rootLongDescription = `Pyforce batch-processes a directory of Python package archives: each
archive is extracted into a private scratch area, its source files are
harvested into a shared collision-free tree, and an external static
analysis scanner is run against the aggregated result, producing one
report per package.

Supported archive formats: .tar, .tar.gz, .tgz, .zip and .whl.`

const runLongDescription = `Run the batch over every archive directly inside the source directory.

Failures of individual archives are logged and counted; they never abort
the batch. The process exits non-zero only when the source, harvest or
reports directories themselves are unusable.`

const listLongDescription = `List the files in the source directory together with their detected
archive kind, without extracting or scanning anything.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pyforce",
		Short: "Batch package harvesting and scanning tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", viper.GetBool(logVerboseKey) || verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func init() {
	// Initialize shared dependencies.
	ui = controller.NewSimpleUI(rootCmd)
	fsAdapter = adapter.NewLocalHarvestFSAdapter()
	reportStore = adapter.NewReportStore()
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&sourceDirFlag, sourceFlagName, "s",
			viper.GetString(sourceFlagName),
			"directory holding the input package archives",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(sourceFlagName), sourceFlagName)

	cmd.PersistentFlags().
		StringVar(
			&harvestDirFlag, harvestFlagName,
			viper.GetString(harvestFlagName),
			"shared output tree for harvested source files",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(harvestFlagName), harvestFlagName)

	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for per-package scan reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// buildWorkflow assembles the batch workflow from the current configuration.
// The scanner and detector depend on viper values, so this runs at command
// execution time rather than in init.
func buildWorkflow() domain.Workflow {
	if workflow != nil {
		return workflow
	}

	detector := domain.NewDetector(nil, viper.GetStringSlice(ignoreConfigKey))

	scanner := adapter.NewLocalScanRunnerAdapter(
		viper.GetString(scanToolConfigKey),
		scanArgs(),
		scanTimeout(),
	)

	merger := domain.NewMerger(fsAdapter)
	orchestrator := domain.NewOrchestrator(fsAdapter, scanner, reportStore, merger, detector)

	return domain.NewWorkflow(fsAdapter, reportStore, ui, orchestrator, detector)
}

// scanArgs returns the configured scanner arguments, nil meaning defaults.
func scanArgs() []string {
	args := viper.GetStringSlice(scanArgsConfigKey)
	if len(args) == 0 {
		return nil
	}

	return args
}

// sourcePath returns the configured source directory.
func sourcePath() m.Path {
	return m.Path(viper.GetString(sourceFlagName))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
