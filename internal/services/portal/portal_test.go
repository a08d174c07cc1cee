package portal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MindThoth/HeavyD-sub001/internal/cache"
	"github.com/MindThoth/HeavyD-sub001/internal/gas"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
	"github.com/MindThoth/HeavyD-sub001/internal/pricing"
)

type BackendMock struct {
	mock.Mock
}

func (m *BackendMock) Clients(ctx context.Context) ([]models.Client, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]models.Client)
	return res, args.Error(1)
}

func (m *BackendMock) ClientData(ctx context.Context, email string) (models.Client, error) {
	args := m.Called(ctx, email)
	res, _ := args.Get(0).(models.Client)
	return res, args.Error(1)
}

func (m *BackendMock) ServicePrices(ctx context.Context) ([]models.ServicePrice, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]models.ServicePrice)
	return res, args.Error(1)
}

func (m *BackendMock) Employees(ctx context.Context) ([]models.Employee, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]models.Employee)
	return res, args.Error(1)
}

func (m *BackendMock) TimeEntries(ctx context.Context, clientEmail string) ([]models.TimeEntry, error) {
	args := m.Called(ctx, clientEmail)
	res, _ := args.Get(0).([]models.TimeEntry)
	return res, args.Error(1)
}

func (m *BackendMock) Expenses(ctx context.Context, clientEmail string) ([]models.Expense, error) {
	args := m.Called(ctx, clientEmail)
	res, _ := args.Get(0).([]models.Expense)
	return res, args.Error(1)
}

func (m *BackendMock) Receipts(ctx context.Context, clientEmail string) ([]models.Receipt, error) {
	args := m.Called(ctx, clientEmail)
	res, _ := args.Get(0).([]models.Receipt)
	return res, args.Error(1)
}

func (m *BackendMock) CallMutating(ctx context.Context, mut gas.Mutation) (*gas.Envelope, error) {
	args := m.Called(ctx, mut)
	res, _ := args.Get(0).(*gas.Envelope)
	return res, args.Error(1)
}

func newTestService(backend Backend) (*Service, *cache.Memory) {
	return newTestServiceWithTimeout(backend, 0)
}

func newTestServiceWithTimeout(backend Backend, timeout time.Duration) (*Service, *cache.Memory) {
	c := cache.NewMemory(time.Minute)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, backend, c, timeout), c
}

var testClients = []models.Client{
	{Email: "ann@x.io", Name: "Ann", Status: "lead"},
	{Email: "bob@x.io", Name: "Bob", Status: "active"},
}

func TestService_ClientsIsCached(t *testing.T) {
	backend := new(BackendMock)
	svc, _ := newTestService(backend)
	ctx := context.Background()

	backend.On("Clients", mock.Anything).Return(testClients, nil).Once()

	first, err := svc.Clients(ctx)
	require.NoError(t, err)
	second, err := svc.Clients(ctx)
	require.NoError(t, err)

	assert.Equal(t, testClients, first)
	assert.Equal(t, testClients, second)
	backend.AssertNumberOfCalls(t, "Clients", 1)
}

func TestService_ConcurrentMissesCollapse(t *testing.T) {
	backend := new(BackendMock)
	svc, _ := newTestService(backend)

	release := make(chan struct{})
	backend.On("Clients", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(testClients, nil).Once()

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Clients(context.Background())
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	backend.AssertNumberOfCalls(t, "Clients", 1)
}

func TestService_BackendErrorIsNotCached(t *testing.T) {
	backend := new(BackendMock)
	svc, c := newTestService(backend)
	ctx := context.Background()

	backend.On("Clients", mock.Anything).
		Return(nil, &gas.TransportError{Action: "getAllClients", Err: errors.New("timeout")}).Once()

	_, err := svc.Clients(ctx)
	require.ErrorIs(t, err, gas.ErrTransport)
	assert.Equal(t, 0, c.Len())
}

func TestService_UpdateStatusInvalidates(t *testing.T) {
	backend := new(BackendMock)
	svc, c := newTestService(backend)
	ctx := context.Background()

	backend.On("Clients", mock.Anything).Return(testClients, nil).Twice()
	backend.On("ClientData", mock.Anything, "ann@x.io").Return(testClients[0], nil).Once()
	backend.On("CallMutating", mock.Anything, gas.UpdateClientStatus{Email: "ann@x.io", Status: "active"}).
		Return(&gas.Envelope{Success: true}, nil).Once()

	_, err := svc.Clients(ctx)
	require.NoError(t, err)
	_, err = svc.ClientProfile(ctx, "ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, svc.UpdateStatus(ctx, "ann@x.io", "active"))
	assert.Equal(t, 0, c.Len())

	_, err = svc.Clients(ctx)
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestService_UpdateNotesRejected(t *testing.T) {
	backend := new(BackendMock)
	svc, c := newTestService(backend)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, keyClients, testClients, 0))
	backend.On("CallMutating", mock.Anything, gas.UpdateClientNotes{Email: "zed@x.io", Notes: "hi"}).
		Return(&gas.Envelope{Success: false, Message: "Client not found"},
			&gas.ApplicationError{Action: "updateClientNotes", Message: "Client not found"}).Once()

	err := svc.UpdateNotes(ctx, "zed@x.io", "hi")
	require.ErrorIs(t, err, gas.ErrApplication)
	assert.Contains(t, err.Error(), "Client not found")
	assert.Equal(t, 0, c.Len())
}

func TestService_Quote(t *testing.T) {
	backend := new(BackendMock)
	svc, _ := newTestService(backend)
	ctx := context.Background()

	backend.On("ServicePrices", mock.Anything).Return([]models.ServicePrice{
		{Service: "Vinyl Banner", UnitCost: "0.10", UnitPrice: "0.50"},
	}, nil).Once()

	res, err := svc.Quote(ctx, []pricing.Item{
		{Service: "vinyl banner", Height: 10, Width: 5, Quantity: 2, Multiplier: 4},
	})
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.InDelta(t, 100.0, res.Lines[0].Area, 1e-9)
	assert.Equal(t, "10.00", pricing.Money(res.Totals.Cost))
	assert.Equal(t, "200.00", pricing.Money(res.Totals.SuggestedPrice))
	assert.Equal(t, "190.00", pricing.Money(res.Totals.Profit))

	_, err = svc.Quote(ctx, []pricing.Item{{Service: "Neon", Height: 1, Width: 1, Quantity: 1, Multiplier: 1}})
	require.ErrorIs(t, err, ErrUnknownService)
	backend.AssertNumberOfCalls(t, "ServicePrices", 1)
}

func TestService_CanceledCallerDoesNotFailOthers(t *testing.T) {
	backend := new(BackendMock)
	svc, c := newTestService(backend)

	started := make(chan struct{})
	release := make(chan struct{})
	var loadErr error
	backend.On("Clients", mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
			loadErr = args.Get(0).(context.Context).Err()
		}).
		Return(testClients, nil).Once()

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Clients(firstCtx)
		firstErr <- err
	}()
	<-started

	type result struct {
		clients []models.Client
		err     error
	}
	second := make(chan result, 1)
	go func() {
		got, err := svc.Clients(context.Background())
		second <- result{got, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, testClients, res.clients)
	assert.NoError(t, loadErr, "shared load must not inherit the first caller's cancellation")
	assert.Equal(t, 1, c.Len())
	backend.AssertNumberOfCalls(t, "Clients", 1)
}

func TestService_LoadIsBoundedByBackendTimeout(t *testing.T) {
	backend := new(BackendMock)
	svc, c := newTestServiceWithTimeout(backend, 20*time.Millisecond)

	var loadErr error
	backend.On("Employees", mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
			loadErr = ctx.Err()
		}).
		Return(nil, &gas.TransportError{Action: "getEmployees", Err: context.DeadlineExceeded}).Once()

	_, err := svc.Employees(context.Background())
	require.ErrorIs(t, err, gas.ErrTransport)
	assert.ErrorIs(t, loadErr, context.DeadlineExceeded)
	assert.Equal(t, 0, c.Len())
}

func TestService_LedgerReadsAreCachedPerClient(t *testing.T) {
	backend := new(BackendMock)
	svc, _ := newTestService(backend)
	ctx := context.Background()

	annEntries := []models.TimeEntry{{ID: "t1", ClientEmail: "ann@x.io", Hours: "2"}}
	allEntries := append([]models.TimeEntry{{ID: "t2", ClientEmail: "bob@x.io", Hours: "1"}}, annEntries...)
	backend.On("TimeEntries", mock.Anything, "ann@x.io").Return(annEntries, nil).Once()
	backend.On("TimeEntries", mock.Anything, "").Return(allEntries, nil).Once()
	backend.On("Expenses", mock.Anything, "ann@x.io").Return([]models.Expense{{ID: "x1", Amount: "42.10"}}, nil).Once()
	backend.On("Receipts", mock.Anything, "ann@x.io").Return([]models.Receipt{{ID: "r1", Amount: "120.00"}}, nil).Once()

	for range 2 {
		got, err := svc.TimeEntries(ctx, "ann@x.io")
		require.NoError(t, err)
		assert.Equal(t, annEntries, got)

		got, err = svc.TimeEntries(ctx, "")
		require.NoError(t, err)
		assert.Len(t, got, 2)

		expenses, err := svc.Expenses(ctx, "ann@x.io")
		require.NoError(t, err)
		assert.Equal(t, "42.10", expenses[0].Amount)

		receipts, err := svc.Receipts(ctx, "ann@x.io")
		require.NoError(t, err)
		assert.Equal(t, "120.00", receipts[0].Amount)
	}
	backend.AssertExpectations(t)
}

func TestService_AddEntriesInvalidate(t *testing.T) {
	backend := new(BackendMock)
	svc, c := newTestService(backend)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, keyTime(""), []models.TimeEntry{}, 0))
	require.NoError(t, c.Set(ctx, keyTime("ann@x.io"), []models.TimeEntry{}, 0))
	require.NoError(t, c.Set(ctx, keyExpenses(""), []models.Expense{}, 0))
	require.NoError(t, c.Set(ctx, keyExpenses("ann@x.io"), []models.Expense{}, 0))
	require.NoError(t, c.Set(ctx, keyTime("bob@x.io"), []models.TimeEntry{}, 0))

	entry := models.TimeEntry{EmployeeID: "e7", ClientEmail: "ann@x.io", Date: "2026-10-14", Hours: "3"}
	expense := models.Expense{ClientEmail: "ann@x.io", Date: "2026-10-14", Category: "materials", Amount: "42.10"}
	backend.On("CallMutating", mock.Anything, gas.AddTimeEntry{Entry: entry}).
		Return(&gas.Envelope{Success: true}, nil).Once()
	backend.On("CallMutating", mock.Anything, gas.AddExpense{Expense: expense}).
		Return(nil, &gas.TransportError{Action: "addExpense", Err: errors.New("reset")}).Once()

	require.NoError(t, svc.AddTimeEntry(ctx, entry))
	assert.Equal(t, 3, c.Len())

	err := svc.AddExpense(ctx, expense)
	require.ErrorIs(t, err, gas.ErrTransport)
	assert.Equal(t, 1, c.Len(), "only the other client's entries stay cached")
	backend.AssertExpectations(t)
}

func TestService_EmployeesIsCached(t *testing.T) {
	backend := new(BackendMock)
	svc, _ := newTestService(backend)
	ctx := context.Background()

	employees := []models.Employee{{ID: "e7", Name: "Sam", Role: "installer"}}
	backend.On("Employees", mock.Anything).Return(employees, nil).Once()

	for range 2 {
		got, err := svc.Employees(ctx)
		require.NoError(t, err)
		assert.Equal(t, employees, got)
	}
	backend.AssertNumberOfCalls(t, "Employees", 1)
}
