package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/tier"
)

// ScoreOutput is the combined engine and gatekeeper verdict for one locally
// scored profile.
type ScoreOutput struct {
	ProfileID string             `json:"profile_id,omitempty"`
	FullName  string             `json:"full_name,omitempty"`
	Result    scoring.ScoreResult `json:"result"`
	Gate      tier.Assignment     `json:"gate"`
}

// TableHeaders implements the table renderer contract.
func (o *ScoreOutput) TableHeaders() []string {
	return []string{"PROFILE", "SCORE", "TIER", "GATE TIER", "DISQUALIFIED", "REASON"}
}

// TableRows implements the table renderer contract.
func (o *ScoreOutput) TableRows() [][]string {
	score := "-"
	if o.Result.Score != nil {
		score = strconv.FormatFloat(*o.Result.Score, 'f', 2, 64)
	}
	name := o.FullName
	if name == "" {
		name = o.ProfileID
	}
	return [][]string{{
		name,
		score,
		string(o.Result.Tier),
		string(o.Gate.Tier),
		strconv.FormatBool(o.Result.Disqualified),
		o.Result.Reason,
	}}
}

func (o *ScoreOutput) String() string {
	score := "n/a (disqualified)"
	if o.Result.Score != nil {
		score = strconv.FormatFloat(*o.Result.Score, 'f', 2, 64)
	}

	out := ""
	if o.FullName != "" {
		out += fmt.Sprintf("Profile:   %s\n", o.FullName)
	}
	out += fmt.Sprintf("Score:     %s\n", score)
	out += fmt.Sprintf("Tier:      %s\n", o.Result.Tier)
	out += fmt.Sprintf("Gate tier: %s", o.Gate.Tier)
	if o.Result.Disqualified {
		out += fmt.Sprintf("\nDisqualified: %s", o.Result.Reason)
	}
	if o.Result.FloorProtected {
		out += "\nFloor protection: active"
	}
	for _, unmet := range o.Gate.UnmetRequirements {
		out += fmt.Sprintf("\nUnmet: %s", unmet)
	}
	return out
}

// NewScoreCmd creates the score command: a fully local engine run, no server
// required.
func NewScoreCmd() *cobra.Command {
	var (
		inputFile string
		year      int
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a profile locally with the embedded engine",
		Long:  "Run the deterministic scoring pipeline on a profile JSON document without\ntouching the API server. The same constants the server uses are embedded, so\nthe output matches a server-side evaluation for identical input.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			var p profile.Profile
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("parse profile JSON: %w", err)
			}

			var opts []scoring.Option
			if year > 0 {
				opts = append(opts, scoring.WithCurrentYear(year))
			}
			engine, err := scoring.NewEngine(scoring.DefaultEngineConfig(), opts...)
			if err != nil {
				return err
			}

			result := engine.CalculateScore(p.ScoreInput())
			gate := tier.AssignTier(result, p.GateFacts())

			return PrintResult(cmd, &ScoreOutput{
				ProfileID: string(p.ID),
				FullName:  p.FullName,
				Result:    result,
				Gate:      gate,
			})
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "profile JSON file [REQUIRED]")
	cmd.Flags().IntVar(&year, "year", 0, "reference year for legacy decay (default: current year)")
	cmd.MarkFlagRequired("file")

	return cmd
}
