package postgresengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog/postgresengine"
	"github.com/finlifeos/finlife-core-go/testutil/fixtures"
	"github.com/finlifeos/finlife-core-go/testutil/postgreswrapper"
)

// loggerSpy records plain logging calls.
type loggerSpy struct {
	mu    sync.Mutex
	calls []string
}

func (s *loggerSpy) record(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, msg)
}

func (s *loggerSpy) Debug(msg string, _ ...any) { s.record(msg) }
func (s *loggerSpy) Info(msg string, _ ...any)  { s.record(msg) }
func (s *loggerSpy) Warn(msg string, _ ...any)  { s.record(msg) }
func (s *loggerSpy) Error(msg string, _ ...any) { s.record(msg) }

func (s *loggerSpy) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

// contextualLoggerSpy records context-aware logging calls.
type contextualLoggerSpy struct {
	mu    sync.Mutex
	calls []string
}

func (s *contextualLoggerSpy) record(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, msg)
}

func (s *contextualLoggerSpy) DebugContext(_ context.Context, msg string, _ ...any) { s.record(msg) }
func (s *contextualLoggerSpy) InfoContext(_ context.Context, msg string, _ ...any)  { s.record(msg) }
func (s *contextualLoggerSpy) WarnContext(_ context.Context, msg string, _ ...any)  { s.record(msg) }
func (s *contextualLoggerSpy) ErrorContext(_ context.Context, msg string, _ ...any) { s.record(msg) }

func (s *contextualLoggerSpy) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}

func Test_Append_WithContextualLogger_TakesPrecedenceOverLogger(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	plain := &loggerSpy{}
	contextual := &contextualLoggerSpy{}

	store, err := postgresengine.NewStoreFromAdapter(
		wrapper.DB(),
		postgresengine.WithLogger(plain),
		postgresengine.WithContextualLogger(contextual),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	event := fixtures.WalletCreated(t, 1, testAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at)

	// act
	_, err = store.Append(ctx, event)
	require.NoError(t, err)

	// assert
	messages := contextual.messages()
	assert.NotEmpty(t, messages, "contextual logger should receive log records")
	assert.Contains(t, messages, "eventlog operation: event appended")
	assert.Zero(t, plain.count(), "plain logger should stay silent when a contextual logger is configured")
}
