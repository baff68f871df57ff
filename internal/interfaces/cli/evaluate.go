package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openmdr/MedRank-Intelligence/pkg/client"
)

// EvaluationOutput renders one remote evaluation.
type EvaluationOutput struct {
	*client.Evaluation
}

// TableHeaders implements the table renderer contract.
func (o *EvaluationOutput) TableHeaders() []string {
	return []string{"PROFILE", "SCORE", "TIER", "GATE TIER", "EVALUATED AT"}
}

// TableRows implements the table renderer contract.
func (o *EvaluationOutput) TableRows() [][]string {
	score := "-"
	if o.Score != nil {
		score = strconv.FormatFloat(*o.Score, 'f', 2, 64)
	}
	return [][]string{{
		o.ProfileID,
		score,
		o.EngineTier,
		o.GateTier,
		o.EvaluatedAt.Format("2006-01-02 15:04:05"),
	}}
}

func (o *EvaluationOutput) String() string {
	score := "n/a (disqualified)"
	if o.Score != nil {
		score = strconv.FormatFloat(*o.Score, 'f', 2, 64)
	}

	out := fmt.Sprintf("Profile:   %s\nScore:     %s\nTier:      %s\nGate tier: %s",
		o.ProfileID, score, o.EngineTier, o.GateTier)
	if o.Disqualified {
		out += fmt.Sprintf("\nDisqualified: %s", o.Reason)
	}
	if o.FloorProtected {
		out += "\nFloor protection: active"
	}
	return out
}

// NewEvaluateCmd creates the evaluate command group: server-side evaluations.
func NewEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run server-side evaluations",
	}

	cmd.AddCommand(newEvaluateRunCmd())
	cmd.AddCommand(newEvaluateBatchCmd())
	cmd.AddCommand(newEvaluateHistoryCmd())

	return cmd
}

func newEvaluateRunCmd() *cobra.Command {
	var skipCache bool

	cmd := &cobra.Command{
		Use:   "run PROFILE_ID",
		Short: "Evaluate one profile on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := requireClient(cmd)
			if err != nil {
				return err
			}

			ev, err := api.Evaluations().Evaluate(cmd.Context(), args[0], &client.EvaluateOptions{SkipCache: skipCache})
			if err != nil {
				return err
			}
			return PrintResult(cmd, &EvaluationOutput{Evaluation: ev})
		},
	}

	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "force a fresh engine run, bypassing the cache")
	return cmd
}

// BatchOutput renders a batch evaluation outcome.
type BatchOutput struct {
	*client.BatchResult
}

// TableHeaders implements the table renderer contract.
func (o *BatchOutput) TableHeaders() []string {
	return []string{"PROFILE", "SCORE", "TIER"}
}

// TableRows implements the table renderer contract.
func (o *BatchOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Evaluations)+len(o.Failed))
	for _, ev := range o.Evaluations {
		score := "-"
		if ev.Score != nil {
			score = strconv.FormatFloat(*ev.Score, 'f', 2, 64)
		}
		rows = append(rows, []string{ev.ProfileID, score, ev.EngineTier})
	}
	for _, f := range o.Failed {
		rows = append(rows, []string{f.ProfileID, "-", "FAILED: " + f.Error})
	}
	return rows
}

func (o *BatchOutput) String() string {
	return fmt.Sprintf("Evaluated %d profiles (%d succeeded, %d failed)",
		o.Total, len(o.Evaluations), len(o.Failed))
}

func newEvaluateBatchCmd() *cobra.Command {
	var profileIDs string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate many profiles in one call",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := requireClient(cmd)
			if err != nil {
				return err
			}

			ids := strings.Split(profileIDs, ",")
			for i := range ids {
				ids[i] = strings.TrimSpace(ids[i])
			}

			result, err := api.Evaluations().EvaluateBatch(cmd.Context(), ids)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &BatchOutput{BatchResult: result})
		},
	}

	cmd.Flags().StringVar(&profileIDs, "profiles", "", "comma-separated profile IDs [REQUIRED]")
	cmd.MarkFlagRequired("profiles")
	return cmd
}

// HistoryOutput renders an evaluation history listing.
type HistoryOutput struct {
	ProfileID   string               `json:"profile_id"`
	Evaluations []*client.Evaluation `json:"evaluations"`
}

// TableHeaders implements the table renderer contract.
func (o *HistoryOutput) TableHeaders() []string {
	return []string{"EVALUATION", "SCORE", "TIER", "EVALUATED AT"}
}

// TableRows implements the table renderer contract.
func (o *HistoryOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Evaluations))
	for _, ev := range o.Evaluations {
		score := "-"
		if ev.Score != nil {
			score = strconv.FormatFloat(*ev.Score, 'f', 2, 64)
		}
		rows = append(rows, []string{ev.ID, score, ev.EngineTier, ev.EvaluatedAt.Format("2006-01-02 15:04:05")})
	}
	return rows
}

func (o *HistoryOutput) String() string {
	return fmt.Sprintf("%d evaluations for %s", len(o.Evaluations), o.ProfileID)
}

func newEvaluateHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history PROFILE_ID",
		Short: "List a profile's evaluation history, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := requireClient(cmd)
			if err != nil {
				return err
			}

			records, err := api.Evaluations().History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &HistoryOutput{ProfileID: args[0], Evaluations: records})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of evaluations to return")
	return cmd
}
