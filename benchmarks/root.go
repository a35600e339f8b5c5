package benchmarks

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	configPath string
	episodes   int
	saveFile   string
	runs       int
	logLevel   string
	logFormat  string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "frozenlake",
		Short:         "Tabular Q-learning on the FrozenLake grid world",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 1000, "Number of training episodes")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCommand.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCommand.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "Write a cpu profile to this file in the save folder")
	rootCommand.PersistentFlags().StringVar(&memprofile, "memprofile", "", "Write a memory profile to this file in the save folder")
	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(CompareCommand())
	return rootCommand
}

// interruptContext is cancelled on the first interrupt
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
