package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openmdr/MedRank-Intelligence/pkg/client"
)

// tierOrder fixes the display order from strongest to weakest.
var tierOrder = []string{"TITAN", "ELITE", "MASTER", "UNRANKED"}

// DistributionOutput renders the platform-wide tier breakdown.
type DistributionOutput struct {
	*client.TierDistribution
}

// TableHeaders implements the table renderer contract.
func (o *DistributionOutput) TableHeaders() []string {
	return []string{"TIER", "COUNT"}
}

// TableRows implements the table renderer contract.
func (o *DistributionOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(tierOrder)+1)
	for _, t := range tierOrder {
		rows = append(rows, []string{t, strconv.Itoa(o.Counts[t])})
	}
	rows = append(rows, []string{"DISQUALIFIED", strconv.Itoa(o.Disqualified)})
	return rows
}

func (o *DistributionOutput) String() string {
	out := fmt.Sprintf("Profiles evaluated: %d", o.Total)
	for _, t := range tierOrder {
		out += fmt.Sprintf("\n  %-8s %d", t, o.Counts[t])
	}
	out += fmt.Sprintf("\n  %-8s %d", "DISQ", o.Disqualified)
	return out
}

// LeaderboardOutput renders ranked entries.
type LeaderboardOutput struct {
	Entries []client.LeaderboardEntry `json:"entries"`
}

// TableHeaders implements the table renderer contract.
func (o *LeaderboardOutput) TableHeaders() []string {
	return []string{"RANK", "PROFILE", "SCORE"}
}

// TableRows implements the table renderer contract.
func (o *LeaderboardOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Entries))
	for _, e := range o.Entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			e.ProfileID,
			strconv.FormatFloat(e.Score, 'f', 2, 64),
		})
	}
	return rows
}

func (o *LeaderboardOutput) String() string {
	out := ""
	for i, e := range o.Entries {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("%3d. %-24s %.2f", e.Rank, e.ProfileID, e.Score)
	}
	return out
}

// NewTiersCmd creates the tiers command group: distribution and leaderboard.
func NewTiersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Inspect tier distribution and the leaderboard",
	}

	cmd.AddCommand(newTiersDistributionCmd())
	cmd.AddCommand(newTiersTopCmd())

	return cmd
}

func newTiersDistributionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distribution",
		Short: "Show the platform-wide tier distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := requireClient(cmd)
			if err != nil {
				return err
			}

			td, err := api.Evaluations().TierDistribution(cmd.Context())
			if err != nil {
				return err
			}
			return PrintResult(cmd, &DistributionOutput{TierDistribution: td})
		},
	}
}

func newTiersTopCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the top-ranked profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := requireClient(cmd)
			if err != nil {
				return err
			}

			entries, err := api.Evaluations().Leaderboard(cmd.Context(), n)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &LeaderboardOutput{Entries: entries})
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 10, "number of entries to show")
	return cmd
}
