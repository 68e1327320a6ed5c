package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gangadharKorrapati/apollo/internal/lateral"
	"github.com/gangadharKorrapati/apollo/internal/nlp"
	"github.com/gangadharKorrapati/apollo/internal/store"
)

var (
	scenarioPath string
	resultsDir   string
	maxIters     int
	accuracy     float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve one lateral scenario",
	Long:  `Reads a scenario JSON file, solves it with SLSQP and prints the per-station trajectory.`,
	RunE:  runSolve,
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario JSON path (required)")
	runCmd.Flags().StringVar(&resultsDir, "results", "", "Directory to persist the result (optional)")
	runCmd.Flags().IntVar(&maxIters, "iters", 200, "Max solver iterations")
	runCmd.Flags().Float64Var(&accuracy, "accuracy", 1e-8, "Solver accuracy")

	runCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(runCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	f, err := os.Open(scenarioPath)
	if err != nil {
		return fmt.Errorf("failed to open scenario: %w", err)
	}
	defer f.Close()

	sc, err := lateral.ParseScenario(f)
	if err != nil {
		return fmt.Errorf("failed to parse scenario: %w", err)
	}

	slog.Info("Loaded scenario",
		"stations", len(sc.Corridors),
		"delta_s", sc.DeltaS,
		"d_init", sc.DInit,
	)

	solver := nlp.NewSLSQP()
	solver.MaxIterations = maxIters
	solver.Accuracy = accuracy
	if sc.MaxIter > 0 {
		solver.MaxIterations = sc.MaxIter
	}

	opt, err := sc.NewOptimizer(solver)
	if err != nil {
		return err
	}

	start := time.Now()
	traj, err := opt.Solve()
	if err != nil {
		return fmt.Errorf("solve failed: %w", err)
	}
	sol := opt.Solution()

	slog.Info("Solve complete",
		"elapsed", time.Since(start),
		"objective", sol.Objective,
		"iterations", sol.Iterations,
	)

	fmt.Printf("%10s %12s %12s %12s\n", "s", "d", "d'", "d''")
	samples := make([]store.Sample, len(sc.Corridors))
	for i := range samples {
		s := float64(i) * sc.DeltaS
		d, dp, dpp := traj.Sample(s)
		samples[i] = store.Sample{S: s, D: d, DPrime: dp, DPPrime: dpp}
		fmt.Printf("%10.3f %12.6f %12.6f %12.6f\n", s, d, dp, dpp)
	}

	if resultsDir != "" {
		st, err := store.NewFSStore(resultsDir)
		if err != nil {
			return err
		}
		jobID := uuid.New().String()
		result := &store.Result{
			JobID:      jobID,
			Scenario:   *sc,
			Status:     nlp.Converged.String(),
			Objective:  sol.Objective,
			Iterations: sol.Iterations,
			Samples:    samples,
			CreatedAt:  time.Now(),
		}
		if err := st.SaveResult(jobID, result); err != nil {
			return fmt.Errorf("failed to persist result: %w", err)
		}
		fmt.Printf("Saved result %s to %s\n", jobID, resultsDir)
	}

	return nil
}
