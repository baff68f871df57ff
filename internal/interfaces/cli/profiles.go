package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openmdr/MedRank-Intelligence/pkg/client"
)

// ProfileOutput renders one directory profile.
type ProfileOutput struct {
	*client.Profile
}

// TableHeaders implements the table renderer contract.
func (o *ProfileOutput) TableHeaders() []string {
	return []string{"ID", "NAME", "SPECIALTY", "COUNTRY", "HISTORICAL"}
}

// TableRows implements the table renderer contract.
func (o *ProfileOutput) TableRows() [][]string {
	return [][]string{{
		o.ID,
		o.FullName,
		o.Specialty,
		o.Country,
		strconv.FormatBool(o.IsHistorical),
	}}
}

func (o *ProfileOutput) String() string {
	out := fmt.Sprintf("ID:        %s\nName:      %s\nSpecialty: %s\nCountry:   %s",
		o.ID, o.FullName, o.Specialty, o.Country)
	if o.IsHistorical {
		out += "\nHistorical subject"
	}
	if o.HasRetraction {
		out += "\nHas retraction on record"
	}
	return out
}

// SearchOutput renders search hits.
type SearchOutput struct {
	*client.SearchResult
}

// TableHeaders implements the table renderer contract.
func (o *SearchOutput) TableHeaders() []string {
	return []string{"ID", "NAME", "SPECIALTY", "SCORE", "TIER"}
}

// TableRows implements the table renderer contract.
func (o *SearchOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Hits))
	for _, h := range o.Hits {
		rows = append(rows, []string{
			h.ProfileID,
			h.FullName,
			h.Specialty,
			strconv.FormatFloat(h.Score, 'f', 2, 64),
			h.Tier,
		})
	}
	return rows
}

func (o *SearchOutput) String() string {
	out := fmt.Sprintf("%d profiles matched", o.Total)
	for _, h := range o.Hits {
		out += fmt.Sprintf("\n  %-24s %-28s %6.2f %s", h.ProfileID, h.FullName, h.Score, h.Tier)
	}
	return out
}

// LineageOutput renders a mentorship lineage.
type LineageOutput struct {
	*client.Lineage
}

// TableHeaders implements the table renderer contract.
func (o *LineageOutput) TableHeaders() []string {
	return []string{"RELATION", "DEPTH", "ID", "NAME"}
}

// TableRows implements the table renderer contract.
func (o *LineageOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Mentors)+len(o.Mentees))
	for _, n := range o.Mentors {
		rows = append(rows, []string{"mentor", strconv.Itoa(n.Depth), n.ProfileID, n.FullName})
	}
	for _, n := range o.Mentees {
		rows = append(rows, []string{"mentee", strconv.Itoa(n.Depth), n.ProfileID, n.FullName})
	}
	return rows
}

func (o *LineageOutput) String() string {
	out := fmt.Sprintf("Lineage of %s (depth %d): %d mentors, %d mentees",
		o.ProfileID, o.Depth, len(o.Mentors), len(o.Mentees))
	for _, n := range o.Mentors {
		out += fmt.Sprintf("\n  mentor[%d]  %s (%s)", n.Depth, n.FullName, n.ProfileID)
	}
	for _, n := range o.Mentees {
		out += fmt.Sprintf("\n  mentee[%d]  %s (%s)", n.Depth, n.FullName, n.ProfileID)
	}
	return out
}

// NewProfileCmd creates the profiles command group: directory operations
// against the API server.
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage the practitioner directory",
	}

	cmd.AddCommand(newProfileGetCmd())
	cmd.AddCommand(newProfilePushCmd())
	cmd.AddCommand(newProfileSearchCmd())
	cmd.AddCommand(newProfileLineageCmd())

	return cmd
}

func newProfileGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROFILE_ID",
		Short: "Fetch one profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := requireClient(cmd)
			if err != nil {
				return err
			}

			p, err := api.Profiles().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, &ProfileOutput{Profile: p})
		},
	}
}

func newProfilePushCmd() *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Create or replace a profile from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := requireClient(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			var p client.Profile
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("parse profile JSON: %w", err)
			}
			if p.ID == "" {
				return fmt.Errorf("profile JSON must carry an id")
			}

			result, err := api.Profiles().Upsert(cmd.Context(), p.ID, &p)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &ProfileOutput{Profile: result})
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "profile JSON file [REQUIRED]")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newProfileSearchCmd() *cobra.Command {
	var (
		specialty string
		country   string
		tierName  string
		minScore  float64
		byScore   bool
	)

	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search the directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := requireClient(cmd)
			if err != nil {
				return err
			}

			opts := &client.SearchOptions{
				Specialty:   specialty,
				Country:     country,
				Tier:        tierName,
				MinScore:    minScore,
				SortByScore: byScore,
			}
			if len(args) == 1 {
				opts.Query = args[0]
			}

			result, err := api.Profiles().Search(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &SearchOutput{SearchResult: result})
		},
	}

	cmd.Flags().StringVar(&specialty, "specialty", "", "filter by specialty")
	cmd.Flags().StringVar(&country, "country", "", "filter by country")
	cmd.Flags().StringVar(&tierName, "tier", "", "filter by tier (TITAN, ELITE, MASTER, UNRANKED)")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum score")
	cmd.Flags().BoolVar(&byScore, "by-score", false, "sort results by score descending")
	return cmd
}

func newProfileLineageCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "lineage PROFILE_ID",
		Short: "Show a profile's mentorship lineage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := requireClient(cmd)
			if err != nil {
				return err
			}

			lineage, err := api.Profiles().GetLineage(cmd.Context(), args[0], depth)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &LineageOutput{Lineage: lineage})
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "traversal depth (default: server default)")
	return cmd
}
