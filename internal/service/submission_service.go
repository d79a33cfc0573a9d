package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/aquacred-registry/internal/model"
)

type SubmissionStore interface {
	Create(ctx context.Context, submission *model.Submission) error
	MarkConfirmed(ctx context.Context, id uuid.UUID, txHash string) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
	List(ctx context.Context, limit int) ([]model.Submission, error)
}

type Registrar interface {
	RegisterProject(ctx context.Context, data model.Registration) (string, error)
}

// SubmissionService runs portal submissions and keeps an audit trail of them
// when a store is configured.
type SubmissionService struct {
	registrar Registrar
	store     SubmissionStore
	log       zerolog.Logger
	now       func() time.Time
}

const (
	defaultSubmissionLimit = 50
	maxSubmissionLimit     = 500
)

func NewSubmissionService(registrar Registrar, store SubmissionStore, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		registrar: registrar,
		store:     store,
		log:       log.With().Str("component", "submissions").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit registers the project on chain and returns the transaction hash.
// Audit store failures are logged and never change the outcome.
func (s *SubmissionService) Submit(ctx context.Context, principal model.Principal, data model.Registration) (string, error) {
	if _, err := ValidateRegistration(data); err != nil {
		return "", err
	}

	record := s.recordPending(ctx, principal, data)

	hash, err := s.registrar.RegisterProject(ctx, data)
	if err != nil {
		if record != nil {
			if markErr := s.store.MarkFailed(ctx, record.ID, err.Error()); markErr != nil {
				s.log.Warn().Err(markErr).Str("submission_id", record.ID.String()).Msg("mark submission failed")
			}
		}
		return "", err
	}

	if record != nil {
		if markErr := s.store.MarkConfirmed(ctx, record.ID, hash); markErr != nil {
			s.log.Warn().Err(markErr).Str("submission_id", record.ID.String()).Msg("mark submission confirmed")
		}
	}
	return hash, nil
}

func (s *SubmissionService) recordPending(ctx context.Context, principal model.Principal, data model.Registration) *model.Submission {
	if s.store == nil {
		return nil
	}

	now := s.now()
	record := &model.Submission{
		ID:               uuid.New(),
		ProjectName:      data.ProjectName,
		Location:         data.Location,
		ImplementingBody: data.ImplementingBody,
		AreaHectares:     data.AreaHectares,
		StartDate:        data.StartDate,
		ProjectType:      data.ProjectType,
		SubmittedBy:      principal.Subject,
		Status:           model.SubmissionPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, record); err != nil {
		s.log.Warn().Err(err).Str("project_name", data.ProjectName).Msg("record submission")
		return nil
	}
	return record
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, limit int) ([]model.Submission, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: submission store not configured", ErrConfiguration)
	}
	if limit <= 0 {
		limit = defaultSubmissionLimit
	}
	if limit > maxSubmissionLimit {
		limit = maxSubmissionLimit
	}
	return s.store.List(ctx, limit)
}
