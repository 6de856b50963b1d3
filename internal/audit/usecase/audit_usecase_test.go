package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
	"github.com/allisson/trustcore/internal/audit/usecase/mocks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuditUseCase_RecordAndClose(t *testing.T) {
	repo := mocks.NewMockEventRepository(t)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *auditDomain.Event) bool {
		return e.EventType == auditDomain.EventSealUnseal
	})).Return(nil).Times(3)

	uc := NewAuditUseCase(repo, 10, discardLogger())

	for i := 0; i < 3; i++ {
		uc.Record(context.Background(), auditDomain.NewEvent(auditDomain.EventSealUnseal, "cli", "vault", nil))
	}

	require.NoError(t, uc.Close(context.Background()))
}

func TestAuditUseCase_RepositoryErrorIsLogged(t *testing.T) {
	repo := mocks.NewMockEventRepository(t)
	repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	uc := NewAuditUseCase(repo, 1, discardLogger())
	uc.Record(context.Background(), auditDomain.NewEvent(auditDomain.EventSealSeal, "cli", "vault", nil))

	require.NoError(t, uc.Close(context.Background()))
}

func TestAuditUseCase_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	repo := mocks.NewMockEventRepository(t)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		started <- struct{}{}
		<-release
	}).Return(nil).Times(2)

	uc := NewAuditUseCase(repo, 1, discardLogger())

	// First event is picked up by the writer, which then blocks.
	uc.Record(context.Background(), auditDomain.NewEvent(auditDomain.EventCSRSign, "cli", "a", nil))
	<-started

	// Second fills the buffer, third is dropped.
	uc.Record(context.Background(), auditDomain.NewEvent(auditDomain.EventCSRSign, "cli", "b", nil))
	uc.Record(context.Background(), auditDomain.NewEvent(auditDomain.EventCSRSign, "cli", "c", nil))

	close(release)
	require.NoError(t, uc.Close(context.Background()))
}

func TestAuditUseCase_RecordAfterClose(t *testing.T) {
	repo := mocks.NewMockEventRepository(t)

	uc := NewAuditUseCase(repo, 4, discardLogger())
	require.NoError(t, uc.Close(context.Background()))
	require.NoError(t, uc.Close(context.Background()))

	assert.NotPanics(t, func() {
		uc.Record(context.Background(), auditDomain.NewEvent(auditDomain.EventSealSeal, "cli", "vault", nil))
	})
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuditUseCase_CloseTimeout(t *testing.T) {
	release := make(chan struct{})
	repo := mocks.NewMockEventRepository(t)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		<-release
	}).Return(nil).Once()

	uc := NewAuditUseCase(repo, 1, discardLogger())
	uc.Record(context.Background(), auditDomain.NewEvent(auditDomain.EventSealSeal, "cli", "vault", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, uc.Close(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, uc.Close(context.Background()))
}

func TestAuditUseCase_List(t *testing.T) {
	repo := mocks.NewMockEventRepository(t)
	expected := []*auditDomain.Event{{EventType: auditDomain.EventSealSeal}}
	repo.On("List", mock.Anything, 0, 50).Return(expected, nil).Once()

	uc := NewAuditUseCase(repo, 1, discardLogger())
	defer func() { _ = uc.Close(context.Background()) }()

	events, err := uc.List(context.Background(), 0, 50)
	require.NoError(t, err)
	assert.Equal(t, expected, events)
}
