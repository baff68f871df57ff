package kafka

import (
	"context"
	"time"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// sourceService identifies this platform in event envelopes.
const sourceService = "medrank-intelligence"

// Publisher emits domain events through a Producer. It satisfies the
// evaluation and directory publisher ports.
type Publisher struct {
	producer *Producer
}

// NewPublisher wraps producer.
func NewPublisher(producer *Producer) *Publisher {
	return &Publisher{producer: producer}
}

// PublishEvaluationCompleted emits an evaluation.completed event keyed by
// profile ID.
func (p *Publisher) PublishEvaluationCompleted(ctx context.Context, e *evaluation.Evaluation) error {
	env, err := NewEventEnvelope(EventTypeEvaluationCompleted, sourceService, EvaluationCompletedPayload{
		EvaluationID:  string(e.ID),
		ProfileID:     string(e.ProfileID),
		Score:         e.Score,
		EngineTier:    string(e.EngineTier),
		GateTier:      string(e.GateTier),
		Disqualified:  e.Disqualified,
		EngineVersion: e.EngineVersion,
		EvaluatedAt:   e.EvaluatedAt,
	})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicEvaluationCompleted, []byte(e.ProfileID))
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// PublishProfileUpdated emits a profile.updated event keyed by profile ID.
func (p *Publisher) PublishProfileUpdated(ctx context.Context, prof *profile.Profile) error {
	env, err := NewEventEnvelope(EventTypeProfileUpdated, sourceService, ProfileUpdatedPayload{
		ProfileID: string(prof.ID),
		FullName:  prof.FullName,
		UpdatedAt: prof.UpdatedAt,
	})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicProfileUpdated, []byte(prof.ID))
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// PublishProfileDeleted emits a profile.deleted event keyed by profile ID.
func (p *Publisher) PublishProfileDeleted(ctx context.Context, id common.ProfileID) error {
	env, err := NewEventEnvelope(EventTypeProfileDeleted, sourceService, ProfileDeletedPayload{
		ProfileID: string(id),
		DeletedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicProfileDeleted, []byte(id))
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}
