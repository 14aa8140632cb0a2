package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:          "commute",
		Short:        "Commute form for the terminal",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "commute backend base URL (default COMMUTE_BACKEND_URL)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(queryCmd(&opts))
	rootCmd.AddCommand(interactiveCmd(&opts))
	rootCmd.AddCommand(placesCmd(&opts))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func queryCmd(opts *options) *cobra.Command {
	var origin, destination, date string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Submit the form once and print the commute report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd.Context(), opts, origin, destination, date)
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "origin address")
	cmd.Flags().StringVar(&destination, "destination", "", "destination address")
	cmd.Flags().StringVar(&date, "date", "", "commute date (YYYY-MM-DD)")
	return cmd
}

func interactiveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Fill in and submit the form line by line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd.Context(), opts)
		},
	}
}

func placesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "places [query]",
		Short: "List autocomplete suggestions for an address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaces(cmd.Context(), opts, args)
		},
	}
}
