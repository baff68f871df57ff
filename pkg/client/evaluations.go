package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// EvaluationsClient covers the scoring surface: evaluations, history,
// comparisons, tier distribution, and the leaderboard.
type EvaluationsClient struct {
	client *Client
}

// EvaluateOptions tunes a single evaluation request.
type EvaluateOptions struct {
	// SkipCache forces a fresh engine run even when a cached evaluation is
	// still live.
	SkipCache bool
}

// Evaluate runs the scoring pipeline for one profile.
func (ec *EvaluationsClient) Evaluate(ctx context.Context, profileID string, opts *EvaluateOptions) (*Evaluation, error) {
	if profileID == "" {
		return nil, fmt.Errorf("medrank: profileID is required")
	}

	body := map[string]interface{}{"profile_id": profileID}
	if opts != nil && opts.SkipCache {
		body["skip_cache"] = true
	}

	var result Evaluation
	if err := ec.client.post(ctx, "/api/v1/evaluations", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EvaluateBatch re-evaluates many profiles in one call. Per-profile failures
// come back in BatchResult.Failed rather than failing the whole batch.
func (ec *EvaluationsClient) EvaluateBatch(ctx context.Context, profileIDs []string) (*BatchResult, error) {
	if len(profileIDs) == 0 {
		return nil, fmt.Errorf("medrank: at least one profileID is required")
	}

	body := map[string]interface{}{"profile_ids": profileIDs}
	var result BatchResult
	if err := ec.client.post(ctx, "/api/v1/evaluations/batch", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// History lists a profile's evaluations, newest first. A limit of 0 means
// server default.
func (ec *EvaluationsClient) History(ctx context.Context, profileID string, limit int) ([]*Evaluation, error) {
	if profileID == "" {
		return nil, fmt.Errorf("medrank: profileID is required")
	}

	path := fmt.Sprintf("/api/v1/profiles/%s/evaluations", url.PathEscape(profileID))
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var result struct {
		Evaluations []*Evaluation `json:"evaluations"`
	}
	if err := ec.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Evaluations, nil
}

// Compare contrasts a profile's two most recent evaluations.
func (ec *EvaluationsClient) Compare(ctx context.Context, profileID string) (*Comparison, error) {
	if profileID == "" {
		return nil, fmt.Errorf("medrank: profileID is required")
	}

	var result Comparison
	path := fmt.Sprintf("/api/v1/profiles/%s/evaluations/compare", url.PathEscape(profileID))
	if err := ec.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TierDistribution returns the platform-wide tier breakdown.
func (ec *EvaluationsClient) TierDistribution(ctx context.Context) (*TierDistribution, error) {
	var result TierDistribution
	if err := ec.client.get(ctx, "/api/v1/tiers/distribution", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Leaderboard returns the top-n ranked profiles. A size of 0 means server
// default.
func (ec *EvaluationsClient) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	path := "/api/v1/leaderboard"
	if n > 0 {
		path += "?n=" + strconv.Itoa(n)
	}

	var result struct {
		Entries []LeaderboardEntry `json:"entries"`
	}
	if err := ec.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Entries, nil
}
