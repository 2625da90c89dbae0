package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	dryRun   bool
	openOnly bool
)

func init() {
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the run without committing results")
	resultCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the result without applying it")
	pairingsCmd.Flags().BoolVar(&openOnly, "open", false, "Only list pairings without an outcome")

	rosterCmd.AddCommand(rosterAddCmd, rosterRemoveCmd)
	schedulerCmd.AddCommand(schedulerEnableCmd, schedulerDisableCmd)

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(pairingsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(schedulerCmd)
	rootCmd.AddCommand(announceCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the standings table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/standings")
	},
}

var pairingsCmd = &cobra.Command{
	Use:   "pairings",
	Short: "List the pairings of the round robin",
	RunE: func(cmd *cobra.Command, args []string) error {
		if openOnly {
			return performGetRequest("/pairings?open=true")
		}
		return performGetRequest("/pairings")
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the journal of applied results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/results")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the synchronization status and recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/sync/status")
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Trigger a synchronization run against chess.com",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performAdminRequest(http.MethodPost, withDryRun("/sync"), nil)
	},
}

var resultCmd = &cobra.Command{
	Use:   "result <pairing-id> <a|b|draw>",
	Short: "Enter the result of an open pairing manually",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := withDryRun("/pairings/" + url.PathEscape(args[0]) + "/result")
		return performAdminRequest(http.MethodPost, endpoint, map[string]string{"outcome": args[1]})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all scores and reopen every pairing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performAdminRequest(http.MethodPost, "/reset", nil)
	},
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Edit the tournament roster",
}

var rosterAddCmd = &cobra.Command{
	Use:   "add <name> <username>",
	Short: "Add a player to the roster",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performAdminRequest(http.MethodPost, "/roster", map[string]string{"name": args[0], "username": args[1]})
	},
}

var rosterRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a player and their pairings from the roster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performAdminRequest(http.MethodDelete, "/roster/"+url.PathEscape(args[0]), nil)
	},
}

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Control the recurring synchronization",
}

var schedulerEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable recurring synchronization",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performAdminRequest(http.MethodPost, "/scheduler/enable", nil)
	},
}

var schedulerDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable recurring synchronization",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performAdminRequest(http.MethodPost, "/scheduler/disable", nil)
	},
}

var announceCmd = &cobra.Command{
	Use:   "announce",
	Short: "Post the standings to Slack",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performAdminRequest(http.MethodPost, "/standings/announce", nil)
	},
}

func withDryRun(endpoint string) string {
	if dryRun {
		return endpoint + "?dry_run=true"
	}
	return endpoint
}

func performGetRequest(endpoint string) error {
	req, err := http.NewRequest(http.MethodGet, host+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return do(req)
}

func performAdminRequest(method, endpoint string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, host+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if adminSecret == "" {
		return fmt.Errorf("admin secret is required, pass --admin-secret or set ADMIN_SECRET")
	}
	req.Header.Set("Authorization", "Bearer "+adminSecret)
	return do(req)
}

func do(req *http.Request) error {
	fmt.Printf("Making %s request to %s\n", req.Method, req.URL)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
