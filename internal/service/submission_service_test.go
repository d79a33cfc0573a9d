package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/aquacred-registry/internal/model"
)

type fakeStore struct {
	created   []model.Submission
	confirmed map[uuid.UUID]string
	failed    map[uuid.UUID]string
	createErr error
	listLimit int
}

func newFakeStore() *fakeStore {
	return &fakeStore{confirmed: map[uuid.UUID]string{}, failed: map[uuid.UUID]string{}}
}

func (f *fakeStore) Create(_ context.Context, s *model.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeStore) MarkConfirmed(_ context.Context, id uuid.UUID, txHash string) error {
	f.confirmed[id] = txHash
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, id uuid.UUID, message string) error {
	f.failed[id] = message
	return nil
}

func (f *fakeStore) List(_ context.Context, limit int) ([]model.Submission, error) {
	f.listLimit = limit
	return f.created, nil
}

type fakeRegistrar struct {
	calls int
	hash  string
	err   error
}

func (f *fakeRegistrar) RegisterProject(context.Context, model.Registration) (string, error) {
	f.calls++
	return f.hash, f.err
}

func TestSubmitRecordsConfirmedSubmission(t *testing.T) {
	store := newFakeStore()
	registrar := &fakeRegistrar{hash: "0xfeed"}
	svc := NewSubmissionService(registrar, store, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }

	hash, err := svc.Submit(context.Background(), model.Principal{Subject: "registrar-1"}, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", hash)

	require.Len(t, store.created, 1)
	record := store.created[0]
	assert.Equal(t, model.SubmissionPending, record.Status)
	assert.Equal(t, "registrar-1", record.SubmittedBy)
	assert.Equal(t, "Kadalundi Estuary", record.ProjectName)
	assert.Equal(t, svc.now(), record.CreatedAt)
	assert.Equal(t, "0xfeed", store.confirmed[record.ID])
	assert.Empty(t, store.failed)
}

func TestSubmitRecordsFailure(t *testing.T) {
	store := newFakeStore()
	registrar := &fakeRegistrar{err: errors.New("blockchain error: transaction reverted")}
	svc := NewSubmissionService(registrar, store, zerolog.Nop())

	_, err := svc.Submit(context.Background(), model.Principal{}, validRegistration())
	require.Error(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, "blockchain error: transaction reverted", store.failed[store.created[0].ID])
	assert.Empty(t, store.confirmed)
}

func TestSubmitValidatesBeforeRecording(t *testing.T) {
	store := newFakeStore()
	registrar := &fakeRegistrar{}
	svc := NewSubmissionService(registrar, store, zerolog.Nop())

	data := validRegistration()
	data.ProjectType = ""
	_, err := svc.Submit(context.Background(), model.Principal{}, data)

	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.created)
	assert.Zero(t, registrar.calls)
}

func TestSubmitSurvivesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("database is locked")
	registrar := &fakeRegistrar{hash: "0xbeef"}
	svc := NewSubmissionService(registrar, store, zerolog.Nop())

	hash, err := svc.Submit(context.Background(), model.Principal{}, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "0xbeef", hash)
	assert.Empty(t, store.confirmed)
}

func TestSubmitWithoutStore(t *testing.T) {
	registrar := &fakeRegistrar{hash: "0x01"}
	svc := NewSubmissionService(registrar, nil, zerolog.Nop())

	hash, err := svc.Submit(context.Background(), model.Principal{}, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "0x01", hash)

	_, err = svc.ListSubmissions(context.Background(), 10)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestListSubmissionsClampsLimit(t *testing.T) {
	store := newFakeStore()
	svc := NewSubmissionService(&fakeRegistrar{}, store, zerolog.Nop())

	_, err := svc.ListSubmissions(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, defaultSubmissionLimit, store.listLimit)

	_, err = svc.ListSubmissions(context.Background(), 10_000)
	require.NoError(t, err)
	assert.Equal(t, maxSubmissionLimit, store.listLimit)
}
