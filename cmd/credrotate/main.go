package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/credrotate/cmd/credrotate/commands"
	"github.com/systmms/credrotate/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inside Lambda the binary is the function handler and has no arguments
	if commands.InLambda(os.LookupEnv) && len(os.Args) == 1 {
		os.Args = append(os.Args, "lambda")
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	g := &commands.Globals{
		LookupEnv:   os.LookupEnv,
		LoadClients: commands.DefaultClients,
	}

	rootCmd := &cobra.Command{
		Use:   "credrotate",
		Short: "Rotate database and user directory passwords stored in AWS Secrets Manager",
		Long: `credrotate is a Secrets Manager rotation function. Deployed to Lambda it
handles the createSecret, setSecret, testSecret and finishSecret steps;
locally it can replay events, simulate a rotation and check configuration.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.Logger = logging.NewWithWriter(cmd.ErrOrStderr(), g.Debug, g.NoColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.ConfigFile, "config", "", "Config file path (default: read the environment)")
	rootCmd.PersistentFlags().BoolVar(&g.NoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&g.Debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewLambdaCommand(g),
		commands.NewInvokeCommand(g),
		commands.NewSimulateCommand(g),
		commands.NewPasswordCommand(g),
		commands.NewDoctorCommand(g),
	)

	return rootCmd.Execute()
}
