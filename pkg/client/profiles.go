package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ProfilesClient covers the practitioner directory: profile CRUD, search, and
// mentorship lineage.
type ProfilesClient struct {
	client *Client
}

// ListOptions narrows directory listings.
type ListOptions struct {
	Specialty    string
	Country      string
	IsHistorical *bool
	Page         int
	PageSize     int
}

// SearchOptions narrows a directory search.
type SearchOptions struct {
	Query       string
	Specialty   string
	Country     string
	Tier        string
	MinScore    float64
	SortByScore bool
	Page        int
	PageSize    int
}

// Create registers a new profile; the ID rides in the body.
func (pc *ProfilesClient) Create(ctx context.Context, p *Profile) (*Profile, error) {
	if p == nil {
		return nil, fmt.Errorf("medrank: profile is required")
	}

	var result Profile
	if err := pc.client.post(ctx, "/api/v1/profiles", p, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Upsert creates or replaces the profile at the given ID.
func (pc *ProfilesClient) Upsert(ctx context.Context, profileID string, p *Profile) (*Profile, error) {
	if profileID == "" {
		return nil, fmt.Errorf("medrank: profileID is required")
	}
	if p == nil {
		return nil, fmt.Errorf("medrank: profile is required")
	}

	var result Profile
	path := "/api/v1/profiles/" + url.PathEscape(profileID)
	if err := pc.client.put(ctx, path, p, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches one profile by ID.
func (pc *ProfilesClient) Get(ctx context.Context, profileID string) (*Profile, error) {
	if profileID == "" {
		return nil, fmt.Errorf("medrank: profileID is required")
	}

	var result Profile
	if err := pc.client.get(ctx, "/api/v1/profiles/"+url.PathEscape(profileID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// List pages through the directory.
func (pc *ProfilesClient) List(ctx context.Context, opts *ListOptions) (*ProfilePage, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Specialty != "" {
			q.Set("specialty", opts.Specialty)
		}
		if opts.Country != "" {
			q.Set("country", opts.Country)
		}
		if opts.IsHistorical != nil {
			q.Set("historical", strconv.FormatBool(*opts.IsHistorical))
		}
		if opts.Page > 0 {
			q.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	path := "/api/v1/profiles"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result ProfilePage
	if err := pc.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a profile and its derived artifacts.
func (pc *ProfilesClient) Delete(ctx context.Context, profileID string) error {
	if profileID == "" {
		return fmt.Errorf("medrank: profileID is required")
	}
	return pc.client.delete(ctx, "/api/v1/profiles/"+url.PathEscape(profileID))
}

// Search queries the search index.
func (pc *ProfilesClient) Search(ctx context.Context, opts *SearchOptions) (*SearchResult, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Query != "" {
			q.Set("q", opts.Query)
		}
		if opts.Specialty != "" {
			q.Set("specialty", opts.Specialty)
		}
		if opts.Country != "" {
			q.Set("country", opts.Country)
		}
		if opts.Tier != "" {
			q.Set("tier", opts.Tier)
		}
		if opts.MinScore > 0 {
			q.Set("min_score", strconv.FormatFloat(opts.MinScore, 'f', -1, 64))
		}
		if opts.SortByScore {
			q.Set("sort_by_score", "true")
		}
		if opts.Page > 0 {
			q.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	path := "/api/v1/profiles/search"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result SearchResult
	if err := pc.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddLineageEdge records a mentor → mentee relationship.
func (pc *ProfilesClient) AddLineageEdge(ctx context.Context, edge LineageEdge) error {
	if edge.MentorID == "" || edge.MenteeID == "" {
		return fmt.Errorf("medrank: mentor and mentee IDs are required")
	}
	return pc.client.post(ctx, "/api/v1/lineage/edges", edge, nil)
}

// GetLineage fetches a profile's mentorship neighborhood. A depth of 0 means
// server default.
func (pc *ProfilesClient) GetLineage(ctx context.Context, profileID string, depth int) (*Lineage, error) {
	if profileID == "" {
		return nil, fmt.Errorf("medrank: profileID is required")
	}

	path := fmt.Sprintf("/api/v1/profiles/%s/lineage", url.PathEscape(profileID))
	if depth > 0 {
		path += "?depth=" + strconv.Itoa(depth)
	}

	var result Lineage
	if err := pc.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
