// Package directory manages the practitioner profile mirror: upserts, reads,
// listings, mentorship lineage, and search-index synchronization.  Profiles
// arrive already resolved; this service never fetches external data.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

const (
	defaultLineageDepth = 2
	maxLineageDepth     = 5
)

// ProfileIndexer mirrors profile documents into the search index.  The
// reputation service refreshes the same documents with score fields after
// each evaluation; directory syncs the identity fields on upsert.
type ProfileIndexer interface {
	IndexProfile(ctx context.Context, p *profile.Profile) error
	DeleteProfile(ctx context.Context, id common.ProfileID) error
}

// NoopIndexer skips search synchronization.
type NoopIndexer struct{}

func (NoopIndexer) IndexProfile(context.Context, *profile.Profile) error  { return nil }
func (NoopIndexer) DeleteProfile(context.Context, common.ProfileID) error { return nil }

// EventPublisher announces directory changes so the re-scoring worker can
// refresh affected evaluations.
type EventPublisher interface {
	PublishProfileUpdated(ctx context.Context, p *profile.Profile) error
	PublishProfileDeleted(ctx context.Context, id common.ProfileID) error
}

// NoopPublisher drops directory events.
type NoopPublisher struct{}

func (NoopPublisher) PublishProfileUpdated(context.Context, *profile.Profile) error { return nil }
func (NoopPublisher) PublishProfileDeleted(context.Context, common.ProfileID) error { return nil }

// Service exposes directory operations.
type Service interface {
	UpsertProfile(ctx context.Context, p *profile.Profile) error
	GetProfile(ctx context.Context, id common.ProfileID) (*profile.Profile, error)
	ListProfiles(ctx context.Context, filter profile.ListFilter) (*common.PaginatedResult[*profile.Profile], error)
	DeleteProfile(ctx context.Context, id common.ProfileID) error
	SearchProfiles(ctx context.Context, q SearchQuery) (*SearchResult, error)

	AddLineageEdge(ctx context.Context, edge profile.LineageEdge) error
	GetLineage(ctx context.Context, id common.ProfileID, depth int) (*profile.Lineage, error)
}

type service struct {
	profiles  profile.Repository
	lineage   profile.LineageRepository
	indexer   ProfileIndexer
	searcher  ProfileSearcher
	publisher EventPublisher
	logger    logging.Logger
	now       func() time.Time
}

// NewService constructs the directory service.  A nil lineage repository
// disables lineage operations, a nil searcher disables search; nil indexer
// and publisher degrade to no-ops.
func NewService(profiles profile.Repository, lineage profile.LineageRepository, indexer ProfileIndexer, searcher ProfileSearcher, publisher EventPublisher, logger logging.Logger) Service {
	if indexer == nil {
		indexer = NoopIndexer{}
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &service{
		profiles:  profiles,
		lineage:   lineage,
		indexer:   indexer,
		searcher:  searcher,
		publisher: publisher,
		logger:    logger.Named("directory"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) UpsertProfile(ctx context.Context, p *profile.Profile) error {
	if p == nil {
		return errors.InvalidParam("profile is required")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	p.Touch(s.now())
	if err := s.profiles.Upsert(ctx, p); err != nil {
		s.logger.Error("failed to upsert profile",
			logging.String("profile_id", string(p.ID)), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "upsert profile")
	}

	// Best-effort mirrors: the relational row is the source of truth.
	if err := s.indexer.IndexProfile(ctx, p); err != nil {
		s.logger.Warn("failed to index profile",
			logging.String("profile_id", string(p.ID)), logging.Err(err))
	}
	if s.lineage != nil {
		node := profile.LineageNode{ProfileID: p.ID, FullName: p.FullName, Specialty: p.Specialty}
		if err := s.lineage.UpsertNode(ctx, node); err != nil {
			s.logger.Warn("failed to mirror profile into lineage graph",
				logging.String("profile_id", string(p.ID)), logging.Err(err))
		}
	}
	if err := s.publisher.PublishProfileUpdated(ctx, p); err != nil {
		s.logger.Warn("failed to publish profile update",
			logging.String("profile_id", string(p.ID)), logging.Err(err))
	}
	return nil
}

func (s *service) GetProfile(ctx context.Context, id common.ProfileID) (*profile.Profile, error) {
	if id == "" {
		return nil, errors.InvalidParam("profile_id is required")
	}
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeProfileNotFound,
			fmt.Sprintf("profile %s not found", id))
	}
	return p, nil
}

func (s *service) ListProfiles(ctx context.Context, filter profile.ListFilter) (*common.PaginatedResult[*profile.Profile], error) {
	if filter.Pagination.Page == 0 {
		filter.Pagination.Page = 1
	}
	if filter.Pagination.PageSize == 0 {
		filter.Pagination.PageSize = 50
	}
	if err := filter.Pagination.Validate(); err != nil {
		return nil, errors.InvalidParam(err.Error())
	}

	result, err := s.profiles.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "list profiles")
	}
	return result, nil
}

func (s *service) DeleteProfile(ctx context.Context, id common.ProfileID) error {
	if id == "" {
		return errors.InvalidParam("profile_id is required")
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "delete profile")
	}
	if err := s.indexer.DeleteProfile(ctx, id); err != nil {
		s.logger.Warn("failed to remove profile from index",
			logging.String("profile_id", string(id)), logging.Err(err))
	}
	if s.lineage != nil {
		if err := s.lineage.RemoveProfile(ctx, id); err != nil {
			s.logger.Warn("failed to remove profile from lineage graph",
				logging.String("profile_id", string(id)), logging.Err(err))
		}
	}
	if err := s.publisher.PublishProfileDeleted(ctx, id); err != nil {
		s.logger.Warn("failed to publish profile delete",
			logging.String("profile_id", string(id)), logging.Err(err))
	}
	return nil
}

func (s *service) AddLineageEdge(ctx context.Context, edge profile.LineageEdge) error {
	if s.lineage == nil {
		return errors.New(errors.ErrCodeNotImplemented, "lineage graph is not configured")
	}
	if edge.MentorID == "" || edge.MenteeID == "" {
		return errors.InvalidParam("mentor_id and mentee_id are required")
	}
	if edge.MentorID == edge.MenteeID {
		return errors.InvalidParam("a profile cannot mentor itself")
	}
	if err := s.lineage.AddEdge(ctx, edge); err != nil {
		return errors.Wrap(err, errors.ErrCodeGraphWriteError, "add lineage edge")
	}
	return nil
}

func (s *service) GetLineage(ctx context.Context, id common.ProfileID, depth int) (*profile.Lineage, error) {
	if s.lineage == nil {
		return nil, errors.New(errors.ErrCodeNotImplemented, "lineage graph is not configured")
	}
	if id == "" {
		return nil, errors.InvalidParam("profile_id is required")
	}
	if depth <= 0 {
		depth = defaultLineageDepth
	}
	if depth > maxLineageDepth {
		depth = maxLineageDepth
	}

	lineage, err := s.lineage.GetLineage(ctx, id, depth)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphQueryError, "fetch lineage")
	}
	return lineage, nil
}
