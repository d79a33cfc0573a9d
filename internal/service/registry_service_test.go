package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/aquacred-registry/internal/chain"
	"github.com/nurpe/aquacred-registry/internal/config"
	"github.com/nurpe/aquacred-registry/internal/model"
)

type fakeRegistry struct {
	mu          sync.Mutex
	canTransact bool
	projects    map[uint64]model.Project
	failIDs     map[uint64]error
	count       uint64
	countErr    error
	counter     uint64
	records     []uint64
	registerErr error
	drafts      []model.ProjectDraft
	lookups     []uint64
	tx          *model.TransactionStatus
	txErr       error

	sink     chan<- model.ProjectRegisteredEvent
	watching chan struct{}
}

func (f *fakeRegistry) CanTransact() bool {
	return f.canTransact
}

func (f *fakeRegistry) RegisterProject(_ context.Context, draft model.ProjectDraft) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, draft)
	if f.registerErr != nil {
		return "", f.registerErr
	}
	return "0x" + common.Bytes2Hex(common.LeftPadBytes([]byte{byte(len(f.drafts))}, 32)), nil
}

func (f *fakeRegistry) GetProject(_ context.Context, id uint64) (model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, id)
	if err := f.failIDs[id]; err != nil {
		return model.Project{}, err
	}
	return f.projects[id], nil
}

func (f *fakeRegistry) Projects(_ context.Context, id uint64) (model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, id)
	return f.projects[id], nil
}

func (f *fakeRegistry) GetProjectCount(context.Context) (uint64, error) {
	return f.count, f.countErr
}

func (f *fakeRegistry) ProjectCounter(context.Context) (uint64, error) {
	return f.counter, f.countErr
}

func (f *fakeRegistry) WatchProjectRegistered(_ context.Context, sink chan<- model.ProjectRegisteredEvent) (event.Subscription, error) {
	f.sink = sink
	close(f.watching)
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	}), nil
}

func (f *fakeRegistry) Transaction(_ context.Context, hash common.Hash) (*model.TransactionStatus, error) {
	if f.txErr != nil {
		return nil, f.txErr
	}
	status := *f.tx
	status.Hash = hash.Hex()
	return &status, nil
}

func initialized(id uint64, name string) model.Project {
	return model.Project{
		ProjectID:        id,
		ProjectName:      name,
		Location:         "Kerala",
		ImplementingBody: "Kerala Forest Dept",
		AreaHectares:     10,
		StartDate:        1705276800,
		ProjectType:      model.ProjectTypeMangroveRestoration,
		IsInitialized:    true,
	}
}

func validRegistration() model.Registration {
	return model.Registration{
		ProjectName:      "Kadalundi Estuary",
		Location:         "Kerala",
		ImplementingBody: "Kerala Forest Dept",
		AreaHectares:     120,
		StartDate:        "2024-01-15",
		ProjectType:      model.ProjectTypeMangroveAfforestation,
	}
}

func newTestService(registry *fakeRegistry) (*RegistryService, *int32) {
	var connects int32
	connect := func(context.Context) (Registry, error) {
		atomic.AddInt32(&connects, 1)
		return registry, nil
	}
	cfg := &config.Config{Chain: config.ChainConfig{Network: "sepolia"}}
	return NewRegistryService(connect, cfg, zerolog.Nop()), &connects
}

func TestRegisterProjectValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Registration)
	}{
		{"missing name", func(r *model.Registration) { r.ProjectName = "" }},
		{"blank location", func(r *model.Registration) { r.Location = "   " }},
		{"missing implementing body", func(r *model.Registration) { r.ImplementingBody = "" }},
		{"zero area", func(r *model.Registration) { r.AreaHectares = 0 }},
		{"area above cap", func(r *model.Registration) { r.AreaHectares = MaxAreaHectares + 1 }},
		{"area near uint64 max", func(r *model.Registration) { r.AreaHectares = 1 << 62 }},
		{"missing start date", func(r *model.Registration) { r.StartDate = "" }},
		{"missing project type", func(r *model.Registration) { r.ProjectType = "" }},
		{"unparseable start date", func(r *model.Registration) { r.StartDate = "15/01/2024" }},
		{"start date before epoch", func(r *model.Registration) { r.StartDate = "1969-12-31" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := &fakeRegistry{canTransact: true}
			svc, connects := newTestService(registry)

			data := validRegistration()
			tt.mutate(&data)

			_, err := svc.RegisterProject(context.Background(), data)
			require.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, atomic.LoadInt32(connects), "no chain handle may be created")
			assert.Empty(t, registry.drafts, "no chain call may be attempted")
		})
	}
}

func TestRegisterProjectListsMissingFields(t *testing.T) {
	svc, _ := newTestService(&fakeRegistry{canTransact: true})

	_, err := svc.RegisterProject(context.Background(), model.Registration{ProjectName: "x", AreaHectares: 1})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "location, implementingBody, startDate, projectType")
}

func TestRegisterProjectSubmitsDraft(t *testing.T) {
	registry := &fakeRegistry{canTransact: true}
	svc, _ := newTestService(registry)

	hash, err := svc.RegisterProject(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Len(t, hash, 66)

	require.Len(t, registry.drafts, 1)
	assert.Equal(t, model.ProjectDraft{
		ProjectName:      "Kadalundi Estuary",
		Location:         "Kerala",
		ImplementingBody: "Kerala Forest Dept",
		AreaHectares:     120,
		StartDate:        1705276800,
		ProjectType:      model.ProjectTypeMangroveAfforestation,
	}, registry.drafts[0])
}

func TestRegisterProjectAcceptsTimestamps(t *testing.T) {
	draft, err := ValidateRegistration(model.Registration{
		ProjectName: "a", Location: "b", ImplementingBody: "c", AreaHectares: 1,
		StartDate: "2024-01-15T06:00:00Z", ProjectType: "d",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1705276800+6*3600, draft.StartDate)
}

func TestRegisterProjectWithoutSigner(t *testing.T) {
	registry := &fakeRegistry{canTransact: false}
	svc, _ := newTestService(registry)

	_, err := svc.RegisterProject(context.Background(), validRegistration())
	require.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, chain.ErrMissingSigner)
	assert.Empty(t, registry.drafts)
}

func TestRegisterProjectChainFailure(t *testing.T) {
	registry := &fakeRegistry{canTransact: true, registerErr: chain.ErrReverted}
	svc, _ := newTestService(registry)

	_, err := svc.RegisterProject(context.Background(), validRegistration())
	require.ErrorIs(t, err, ErrChain)
	assert.ErrorIs(t, err, chain.ErrReverted)
}

func TestHandleIsCreatedOnce(t *testing.T) {
	registry := &fakeRegistry{count: 3}
	svc, connects := newTestService(registry)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.GetProjectCount(context.Background())
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(connects))
}

func TestHandleRetriesAfterFailedConnect(t *testing.T) {
	registry := &fakeRegistry{count: 2}
	attempts := 0
	connect := func(context.Context) (Registry, error) {
		attempts++
		if attempts == 1 {
			return nil, chain.ErrMissingEndpoint
		}
		return registry, nil
	}
	svc := NewRegistryService(connect, &config.Config{}, zerolog.Nop())

	_, err := svc.GetProjectCount(context.Background())
	require.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, chain.ErrMissingEndpoint)

	count, err := svc.GetProjectCount(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Equal(t, 2, attempts)
}

func TestConnectNetworkErrorIsChainError(t *testing.T) {
	connect := func(context.Context) (Registry, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	svc := NewRegistryService(connect, &config.Config{}, zerolog.Nop())

	_, err := svc.GetAllProjects(context.Background())
	assert.ErrorIs(t, err, ErrChain)
}

func TestGetAllProjectsEnumeratesInOrder(t *testing.T) {
	registry := &fakeRegistry{
		count: 3,
		projects: map[uint64]model.Project{
			1: initialized(1, "one"),
			2: initialized(2, "two"),
			3: initialized(3, "three"),
		},
	}
	svc, _ := newTestService(registry)

	projects, err := svc.GetAllProjects(context.Background())
	require.NoError(t, err)

	require.Len(t, projects, 3)
	for i, p := range projects {
		assert.EqualValues(t, i+1, p.ProjectID)
	}
	assert.Equal(t, []uint64{1, 2, 3}, registry.lookups)
}

func TestGetAllProjectsEmptyRegistry(t *testing.T) {
	svc, _ := newTestService(&fakeRegistry{count: 0})

	projects, err := svc.GetAllProjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestGetAllProjectsFailsWholeBatch(t *testing.T) {
	registry := &fakeRegistry{
		count: 4,
		projects: map[uint64]model.Project{
			1: initialized(1, "one"),
			3: initialized(3, "three"),
			4: initialized(4, "four"),
		},
		failIDs: map[uint64]error{2: errors.New("execution reverted")},
	}
	svc, _ := newTestService(registry)

	projects, err := svc.GetAllProjects(context.Background())
	require.ErrorIs(t, err, ErrChain)
	assert.Nil(t, projects)
	assert.Equal(t, []uint64{1, 2}, registry.lookups, "enumeration stops at the first failure")
}

func TestGetAllProjectsCountFailure(t *testing.T) {
	svc, _ := newTestService(&fakeRegistry{countErr: errors.New("rpc down")})

	_, err := svc.GetAllProjects(context.Background())
	assert.ErrorIs(t, err, ErrChain)
}

func TestGetProject(t *testing.T) {
	registry := &fakeRegistry{projects: map[uint64]model.Project{5: initialized(5, "five")}}
	svc, _ := newTestService(registry)

	project, err := svc.GetProject(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "five", project.ProjectName)

	_, err = svc.GetProject(context.Background(), 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetProject(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListenForProjectRegistrationsSkipsFailedFetch(t *testing.T) {
	registry := &fakeRegistry{
		watching: make(chan struct{}),
		projects: map[uint64]model.Project{2: initialized(2, "two")},
		failIDs:  map[uint64]error{1: errors.New("header not found")},
	}
	svc, _ := newTestService(registry)

	received := make(chan model.Project, 4)
	sub, err := svc.ListenForProjectRegistrations(context.Background(), func(p model.Project) {
		received <- p
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	<-registry.watching
	registry.sink <- model.ProjectRegisteredEvent{ProjectID: 1}
	registry.sink <- model.ProjectRegisteredEvent{ProjectID: 2}

	select {
	case p := <-received:
		assert.EqualValues(t, 2, p.ProjectID)
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not invoked")
	}
	assert.Empty(t, received)
}

func TestListenStopsOnUnsubscribe(t *testing.T) {
	registry := &fakeRegistry{watching: make(chan struct{})}
	svc, _ := newTestService(registry)

	sub, err := svc.ListenForProjectRegistrations(context.Background(), func(model.Project) {})
	require.NoError(t, err)
	<-registry.watching

	sub.Unsubscribe()

	select {
	case err, ok := <-sub.Err():
		assert.False(t, ok)
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not end")
	}
}

func TestGetProjectRecordReadsMapping(t *testing.T) {
	registry := &fakeRegistry{projects: map[uint64]model.Project{4: initialized(4, "four")}}
	svc, _ := newTestService(registry)

	project, err := svc.GetProjectRecord(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "four", project.ProjectName)
	assert.Equal(t, []uint64{4}, registry.records)
	assert.Empty(t, registry.lookups)

	_, err = svc.GetProjectRecord(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetProjectRecord(context.Background(), 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetProjectCounter(t *testing.T) {
	registry := &fakeRegistry{counter: 9}
	svc, _ := newTestService(registry)

	counter, err := svc.GetProjectCounter(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 9, counter)

	registry.countErr = errors.New("rpc down")
	_, err = svc.GetProjectCounter(context.Background())
	assert.ErrorIs(t, err, ErrChain)
}

func TestListenStopsOnContextCancel(t *testing.T) {
	registry := &fakeRegistry{watching: make(chan struct{})}
	svc, _ := newTestService(registry)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := svc.ListenForProjectRegistrations(ctx, func(model.Project) {})
	require.NoError(t, err)
	defer sub.Unsubscribe()
	<-registry.watching

	cancel()

	select {
	case err := <-sub.Err():
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription kept running after context cancel")
	}
}

func TestVerifyTransaction(t *testing.T) {
	hash := "0x" + common.Bytes2Hex(common.LeftPadBytes([]byte{0x2a}, 32))
	registry := &fakeRegistry{tx: &model.TransactionStatus{Status: model.TransactionSuccess, BlockNumber: 10}}
	svc, _ := newTestService(registry)

	status, err := svc.VerifyTransaction(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionSuccess, status.Status)
	assert.Equal(t, "https://sepolia.etherscan.io/tx/"+status.Hash, status.ExplorerURL)

	_, err = svc.VerifyTransaction(context.Background(), "0x1234")
	assert.ErrorIs(t, err, ErrValidation)

	registry.txErr = chain.ErrTransactionNotFound
	_, err = svc.VerifyTransaction(context.Background(), hash)
	assert.ErrorIs(t, err, ErrNotFound)
}

type closingRegistry struct {
	*fakeRegistry
	closed int
}

func (c *closingRegistry) Close() {
	c.closed++
}

func TestCloseReleasesHandle(t *testing.T) {
	registry := &closingRegistry{fakeRegistry: &fakeRegistry{count: 1}}
	var connects int32
	svc := NewRegistryService(func(context.Context) (Registry, error) {
		atomic.AddInt32(&connects, 1)
		return registry, nil
	}, &config.Config{}, zerolog.Nop())

	svc.Close()
	assert.Zero(t, registry.closed, "nothing to close before first use")

	_, err := svc.GetProjectCount(context.Background())
	require.NoError(t, err)
	svc.Close()
	assert.Equal(t, 1, registry.closed)

	_, err = svc.GetProjectCount(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&connects))
}
