package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host        string
	adminSecret string
)

var rootCmd = &cobra.Command{
	Use:   "roundrobin-cli",
	Short: "A CLI to interact with the chess round robin server",
	Long: `A command-line interface for making requests to the various endpoints
of the chess round robin server. Admin commands need --admin-secret
(or ADMIN_SECRET in the environment).`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&adminSecret, "admin-secret", os.Getenv("ADMIN_SECRET"), "Secret for admin endpoints")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
