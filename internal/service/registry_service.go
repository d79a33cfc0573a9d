package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/event"
	"github.com/rs/zerolog"

	"github.com/nurpe/aquacred-registry/internal/chain"
	"github.com/nurpe/aquacred-registry/internal/config"
	"github.com/nurpe/aquacred-registry/internal/display"
	"github.com/nurpe/aquacred-registry/internal/model"
)

// MaxAreaHectares caps a single registration at one million square kilometres.
const MaxAreaHectares = 100_000_000

// Registry is the contract binding the service talks to.
type Registry interface {
	CanTransact() bool
	RegisterProject(ctx context.Context, draft model.ProjectDraft) (string, error)
	GetProject(ctx context.Context, id uint64) (model.Project, error)
	Projects(ctx context.Context, id uint64) (model.Project, error)
	GetProjectCount(ctx context.Context) (uint64, error)
	ProjectCounter(ctx context.Context) (uint64, error)
	WatchProjectRegistered(ctx context.Context, sink chan<- model.ProjectRegisteredEvent) (event.Subscription, error)
	Transaction(ctx context.Context, hash common.Hash) (*model.TransactionStatus, error)
}

// Connector creates the Registry on first use.
type Connector func(ctx context.Context) (Registry, error)

type RegistryService struct {
	connect Connector
	network string
	log     zerolog.Logger

	mu       sync.Mutex
	registry Registry
}

func NewRegistryService(connect Connector, cfg *config.Config, log zerolog.Logger) *RegistryService {
	return &RegistryService{
		connect: connect,
		network: cfg.Chain.Network,
		log:     log.With().Str("component", "registry").Logger(),
	}
}

func (s *RegistryService) Network() string {
	return s.network
}

// handle returns the shared Registry, connecting once. A failed connection
// is not remembered, so the next call tries again.
func (s *RegistryService) handle(ctx context.Context) (Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registry != nil {
		return s.registry, nil
	}
	registry, err := s.connect(ctx)
	if err != nil {
		return nil, classifyConnectError(err)
	}
	s.registry = registry
	return registry, nil
}

// Close releases the chain connection, if one was opened.
func (s *RegistryService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if closer, ok := s.registry.(interface{ Close() }); ok {
		closer.Close()
	}
	s.registry = nil
}

func classifyConnectError(err error) error {
	switch {
	case errors.Is(err, chain.ErrMissingEndpoint),
		errors.Is(err, chain.ErrMissingContract),
		errors.Is(err, chain.ErrInvalidContract),
		errors.Is(err, chain.ErrInvalidKey):
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	default:
		return fmt.Errorf("%w: %w", ErrChain, err)
	}
}

// RegisterProject validates the registration, submits it and waits for
// confirmation. It returns the transaction hash.
func (s *RegistryService) RegisterProject(ctx context.Context, data model.Registration) (string, error) {
	draft, err := ValidateRegistration(data)
	if err != nil {
		return "", err
	}

	registry, err := s.handle(ctx)
	if err != nil {
		return "", err
	}
	if !registry.CanTransact() {
		return "", fmt.Errorf("%w: %w", ErrConfiguration, chain.ErrMissingSigner)
	}

	hash, err := registry.RegisterProject(ctx, draft)
	if err != nil {
		s.log.Error().Err(err).Str("project_name", draft.ProjectName).Str("tx_hash", hash).Msg("register project failed")
		return "", fmt.Errorf("%w: %w", ErrChain, err)
	}

	s.log.Info().Str("project_name", draft.ProjectName).Str("tx_hash", hash).Msg("project registered")
	return hash, nil
}

func (s *RegistryService) GetProject(ctx context.Context, id uint64) (model.Project, error) {
	return s.lookupProject(ctx, id, Registry.GetProject)
}

// GetProjectRecord reads the contract's public projects mapping instead of
// the getProject view.
func (s *RegistryService) GetProjectRecord(ctx context.Context, id uint64) (model.Project, error) {
	return s.lookupProject(ctx, id, Registry.Projects)
}

func (s *RegistryService) lookupProject(ctx context.Context, id uint64, fetch func(Registry, context.Context, uint64) (model.Project, error)) (model.Project, error) {
	if id == 0 {
		return model.Project{}, fmt.Errorf("%w: project ids start at 1", ErrValidation)
	}

	registry, err := s.handle(ctx)
	if err != nil {
		return model.Project{}, err
	}

	project, err := fetch(registry, ctx, id)
	if err != nil {
		return model.Project{}, fmt.Errorf("%w: %w", ErrChain, err)
	}
	if !project.IsInitialized {
		return model.Project{}, fmt.Errorf("%w: project %d", ErrNotFound, id)
	}
	return project, nil
}

// GetAllProjects reads ids 1..count one after another and fails on the first
// lookup that fails.
func (s *RegistryService) GetAllProjects(ctx context.Context) ([]model.Project, error) {
	count, err := s.GetProjectCount(ctx)
	if err != nil {
		return nil, err
	}

	projects := make([]model.Project, 0, count)
	for id := uint64(1); id <= count; id++ {
		project, err := s.GetProject(ctx, id)
		if err != nil {
			s.log.Error().Err(err).Uint64("project_id", id).Msg("fetch projects failed")
			return nil, fmt.Errorf("fetch project %d: %w", id, err)
		}
		projects = append(projects, project)
	}
	return projects, nil
}

func (s *RegistryService) GetProjectCount(ctx context.Context) (uint64, error) {
	return s.readCounter(ctx, Registry.GetProjectCount)
}

// GetProjectCounter reads the projectCounter storage variable, the id of the
// most recent registration.
func (s *RegistryService) GetProjectCounter(ctx context.Context) (uint64, error) {
	return s.readCounter(ctx, Registry.ProjectCounter)
}

func (s *RegistryService) readCounter(ctx context.Context, read func(Registry, context.Context) (uint64, error)) (uint64, error) {
	registry, err := s.handle(ctx)
	if err != nil {
		return 0, err
	}

	count, err := read(registry, ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrChain, err)
	}
	return count, nil
}

// ListenForProjectRegistrations calls callback with the freshly fetched
// project for every ProjectRegistered event. A failed fetch is logged and the
// event skipped. Cancelling ctx or calling Unsubscribe stops listening.
func (s *RegistryService) ListenForProjectRegistrations(ctx context.Context, callback func(model.Project)) (event.Subscription, error) {
	registry, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	events := make(chan model.ProjectRegisteredEvent)
	sub, err := registry.WatchProjectRegistered(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChain, err)
	}

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case ev := <-events:
				project, err := s.GetProject(ctx, ev.ProjectID)
				if err != nil {
					s.log.Error().Err(err).
						Uint64("project_id", ev.ProjectID).
						Str("tx_hash", ev.TxHash).
						Msg("failed to fetch project details after registration")
					continue
				}
				callback(project)
			case err := <-sub.Err():
				return err
			case <-ctx.Done():
				return ctx.Err()
			case <-quit:
				return nil
			}
		}
	}), nil
}

// VerifyTransaction looks up a transaction by its 0x-prefixed hash.
func (s *RegistryService) VerifyTransaction(ctx context.Context, rawHash string) (*model.TransactionStatus, error) {
	hash, err := parseTxHash(rawHash)
	if err != nil {
		return nil, err
	}

	registry, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	status, err := registry.Transaction(ctx, hash)
	if err != nil {
		if errors.Is(err, chain.ErrTransactionNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, hash.Hex())
		}
		return nil, fmt.Errorf("%w: %w", ErrChain, err)
	}
	status.ExplorerURL = display.GetEtherscanURL(status.Hash, s.network)
	return status, nil
}

// ValidateRegistration checks that every field is present and converts the
// start date to unix seconds.
func ValidateRegistration(data model.Registration) (model.ProjectDraft, error) {
	var missing []string
	if strings.TrimSpace(data.ProjectName) == "" {
		missing = append(missing, "projectName")
	}
	if strings.TrimSpace(data.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(data.ImplementingBody) == "" {
		missing = append(missing, "implementingBody")
	}
	if data.AreaHectares == 0 {
		missing = append(missing, "areaHectares")
	}
	if strings.TrimSpace(data.StartDate) == "" {
		missing = append(missing, "startDate")
	}
	if strings.TrimSpace(data.ProjectType) == "" {
		missing = append(missing, "projectType")
	}
	if len(missing) > 0 {
		return model.ProjectDraft{}, fmt.Errorf("%w: all required fields must be provided (missing %s)", ErrValidation, strings.Join(missing, ", "))
	}

	if data.AreaHectares > MaxAreaHectares {
		return model.ProjectDraft{}, fmt.Errorf("%w: areaHectares must not exceed %d", ErrValidation, MaxAreaHectares)
	}

	startDate, err := parseStartDate(data.StartDate)
	if err != nil {
		return model.ProjectDraft{}, err
	}

	return model.ProjectDraft{
		ProjectName:      strings.TrimSpace(data.ProjectName),
		Location:         strings.TrimSpace(data.Location),
		ImplementingBody: strings.TrimSpace(data.ImplementingBody),
		AreaHectares:     data.AreaHectares,
		StartDate:        startDate.Unix(),
		ProjectType:      strings.TrimSpace(data.ProjectType),
	}, nil
}

func parseStartDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			if parsed.Unix() < 0 {
				return time.Time{}, fmt.Errorf("%w: startDate must not be before 1970-01-01", ErrValidation)
			}
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid startDate %q", ErrValidation, raw)
}

func parseTxHash(raw string) (common.Hash, error) {
	raw = strings.TrimSpace(raw)
	decoded, err := hexutil.Decode(raw)
	if err != nil || len(decoded) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: invalid transaction hash %q", ErrValidation, raw)
	}
	return common.BytesToHash(decoded), nil
}
