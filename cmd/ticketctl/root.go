package main

import (
	"fmt"
	"os"
	"time"

	intconfig "eticket/internal/config"
	"eticket/internal/fareapi"

	"github.com/spf13/cobra"
)

var (
	apiURL     string
	timeoutArg time.Duration
	env        intconfig.Env
)

var rootCmd = &cobra.Command{
	Use:   "ticketctl",
	Short: "Bus e-ticket booking tools",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env = intconfig.LoadEnv()
		if apiURL == "" {
			apiURL = env.FareAPIURL
		}
		if timeoutArg <= 0 {
			timeoutArg = env.FareAPITimeout
		}
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func client() *fareapi.Client {
	return fareapi.New(apiURL, timeoutArg).WithRequestID("ticketctl")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Fare backend base URL (default FARE_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeoutArg, "timeout", 0, "Backend request timeout (default FARE_API_TIMEOUT)")

	rootCmd.AddCommand(routesCmd, stopsCmd, quoteCmd, verifyCmd, renderCmd, inspectCmd)
}
