package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/verification"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/persistence"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/services"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/composables"
)

type verifyOutput struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

func newVerifyCmd() *cobra.Command {
	var (
		scope string
		kind  string
		full  bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Reconcile a session's cached source rows against the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			result, err := runVerification(cmd, scope, kind)
			if err != nil {
				return err
			}

			out := verifyOutput{
				Command:    "verify",
				DurationMS: time.Since(start).Milliseconds(),
			}
			if full {
				out.Result = result
			} else {
				out.Result = map[string]int{
					"total":      result.Total,
					"matches":    result.Matches,
					"mismatches": result.Mismatches,
					"not_found":  result.NotFound,
				}
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Session scope (required)")
	cmd.Flags().StringVar(&kind, "kind", "update", "Job kind the rows came from (import or update)")
	cmd.Flags().BoolVar(&full, "full", false, "Print per-row items, not just the summary")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func runVerification(cmd *cobra.Command, scope, kind string) (*verification.Result, error) {
	store, err := openRecoveryStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	snapshot, err := store.GetRecoverable(cmd.Context(), scope)
	if err != nil {
		return nil, fmt.Errorf("failed to read session snapshot: %w", err)
	}
	if snapshot == nil || len(snapshot.SampleRows) == 0 {
		return nil, fmt.Errorf("no cached source rows for scope %q", scope)
	}

	pool, err := connectDB(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	ctx := composables.WithPool(cmd.Context(), pool)
	svc := services.NewVerificationService(persistence.NewPgProductRepository())
	return svc.Verify(ctx, kind, snapshot.SampleRows)
}
