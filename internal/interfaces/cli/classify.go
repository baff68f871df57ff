package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
)

// ClassifyOutput wraps the bonus result for rendering.
type ClassifyOutput struct {
	honor.BonusResult
}

// TableHeaders implements the table renderer contract.
func (o *ClassifyOutput) TableHeaders() []string {
	return []string{"AWARD TIER", "POINTS"}
}

// TableRows implements the table renderer contract.
func (o *ClassifyOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Classifications))
	for _, c := range o.Classifications {
		rows = append(rows, []string{string(c.Tier), strconv.FormatFloat(c.Points, 'f', 1, 64)})
	}
	return rows
}

func (o *ClassifyOutput) String() string {
	out := fmt.Sprintf("Total points: %.1f\nHighest tier: %s", o.TotalPoints, o.HighestTier)
	if o.FloorProtection {
		out += "\nFloor protection: active (ELITE floor guaranteed)"
	}
	return out
}

// NewClassifyCmd creates the classify command: local honor classification
// against the curated award table.
func NewClassifyCmd() *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify honors locally against the curated award table",
		Long:  "Classify a JSON list of awards into honor tiers and compute the aggregate\nbonus, including whether the list grants ELITE floor protection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			var awards []honor.Award
			if err := json.Unmarshal(data, &awards); err != nil {
				return fmt.Errorf("parse awards JSON: %w", err)
			}
			if len(awards) == 0 {
				return fmt.Errorf("input file contains no awards")
			}

			return PrintResult(cmd, &ClassifyOutput{BonusResult: honor.CalculateBonus(awards)})
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "awards JSON file [REQUIRED]")
	cmd.MarkFlagRequired("file")

	return cmd
}
