// Package cmd provides the root command and CLI setup for ilcheck.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ilcheck/internal/adapter"
	"ilcheck/internal/controller"
	"ilcheck/internal/domain"
	m "ilcheck/internal/model"
)

var loader adapter.ModuleLoader
var reportStore adapter.ReportStore
var ui controller.UI
var workflow domain.Workflow

// referenceFlags lists the reference module path specifications.
var referenceFlags []string

// includeFlags and excludeFlags filter methods by signature regex.
var includeFlags []string
var excludeFlags []string

// outputDirFlag is where the run report is written; empty disables it.
var outputDirFlag string

// verboseFlag switches the log file to debug level.
var verboseFlag bool

// helpShown records that help text was printed, whether through -h or
// a bare invocation. Help output is a configuration failure for exit
// code purposes.
var helpShown bool

const rootLongDescription = `ilcheck verifies the structural and type-safety correctness of compiled
bytecode modules against a set of reference modules. Every violation is
reported with module, type, method, and instruction-offset context,
followed by a per-module verdict line.

Inputs may be literal files, directories (immediate ` + domain.ModuleExtension + ` files only),
or glob patterns. The reference set must include the "` + domain.SystemModuleName + `" module,
which supplies the primitive types.`

// rootCmd represents the base command.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ilcheck [flags] <module>...",
		Short:         "Bytecode module verifier",
		Long:          rootLongDescription,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(verboseFlag)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return domain.ErrNoInputs
			}

			return workflow.Run(cmd.Context(), runArgs(args))
		},
	}

	configureRootFlags(cmd)

	defaultHelp := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		helpShown = true
		defaultHelp(c, args)
	})

	return cmd
}

func init() {
	ui = controller.NewSimpleUI(rootCmd.OutOrStdout(), controller.IsTTY(os.Stdout))
	loader = adapter.NewLocalModuleLoader()
	reportStore = adapter.NewYAMLReportStore()
	workflow = domain.NewWorkflow(loader, reportStore, ui)
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringArrayVarP(&referenceFlags, referenceFlagName, "r",
		viper.GetStringSlice(referenceConfigKey), "reference module path, directory, or pattern (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(referenceFlagName), referenceConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&includeFlags, includeFlagName, "i",
		viper.GetStringSlice(includeConfigKey), "verify only methods matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(includeFlagName), includeConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludeFlags, excludeFlagName, "e",
		viper.GetStringSlice(excludeConfigKey), "skip methods matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVarP(&outputDirFlag, outputFlagName, "o",
		viper.GetString(outputFlagName), "output directory for the run report")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&verboseFlag, verboseFlagName, false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func runArgs(args []string) domain.RunArgs {
	return domain.RunArgs{
		Inputs:     args,
		References: viper.GetStringSlice(referenceConfigKey),
		Include:    viper.GetStringSlice(includeConfigKey),
		Exclude:    viper.GetStringSlice(excludeConfigKey),
		Reports:    m.Path(viper.GetString(outputFlagName)),
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if code := exitCode(err); code != 0 {
		os.Exit(code)
	}
}

// exitCode maps a command outcome to the process exit code. Setup
// failures and help requests exit 1; per-module verification errors
// have already been reported and do not count.
func exitCode(err error) int {
	if err != nil || helpShown {
		return 1
	}

	return 0
}
