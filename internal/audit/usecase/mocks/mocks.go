// Package mocks provides testify mocks for the audit use case interfaces.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
)

// MockEventRepository is a mock implementation of EventRepository.
type MockEventRepository struct {
	mock.Mock
}

// NewMockEventRepository creates a MockEventRepository that asserts its expectations on cleanup.
func NewMockEventRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEventRepository {
	m := &MockEventRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method.
func (m *MockEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockEventRepository) List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Event), args.Error(1)
}

// RecorderSpy collects recorded events in memory.
type RecorderSpy struct {
	mu     sync.Mutex
	events []auditDomain.Event
}

// Record stores event.
func (r *RecorderSpy) Record(_ context.Context, event auditDomain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *RecorderSpy) Events() []auditDomain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]auditDomain.Event(nil), r.events...)
}

// Types returns the event types in recording order.
func (r *RecorderSpy) Types() []string {
	events := r.Events()
	types := make([]string, len(events))
	for i, event := range events {
		types[i] = event.EventType + ":" + event.Result
	}
	return types
}

// MockAuditUseCase is a mock implementation of usecase.AuditUseCase.
type MockAuditUseCase struct {
	mock.Mock
}

// NewMockAuditUseCase creates a MockAuditUseCase that asserts its expectations on cleanup.
func NewMockAuditUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuditUseCase {
	m := &MockAuditUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Record mocks the Record method.
func (m *MockAuditUseCase) Record(ctx context.Context, event auditDomain.Event) {
	m.Called(ctx, event)
}

// List mocks the List method.
func (m *MockAuditUseCase) List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Event), args.Error(1)
}

// Close mocks the Close method.
func (m *MockAuditUseCase) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
