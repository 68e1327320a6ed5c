package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gangadharKorrapati/apollo/internal/server"
	"github.com/gangadharKorrapati/apollo/internal/store"
)

var (
	servePort       int
	serveResultsDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP solve-job service",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resultStore store.Store
		if serveResultsDir != "" {
			fs, err := store.NewFSStore(serveResultsDir)
			if err != nil {
				return fmt.Errorf("failed to open result store: %w", err)
			}
			resultStore = fs
		}

		addr := fmt.Sprintf(":%d", servePort)
		srv := server.NewServer(addr, resultStore, nil)
		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP server port")
	serveCmd.Flags().StringVar(&serveResultsDir, "results", "", "Directory to persist results (optional)")
	rootCmd.AddCommand(serveCmd)
}
