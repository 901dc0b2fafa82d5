package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcretail/storage-gateway/storage"
)

// fakeStore tracks state in memory and can fail any step.
type fakeStore struct {
	customers []storage.CustomerEntity
	products  []storage.ProductEntity
	messages  []string
	contracts map[string][]byte

	ensureCalls int

	ensureErr       error
	listProductsErr error
	enqueueErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{contracts: make(map[string][]byte)}
}

func (f *fakeStore) EnsureResources(context.Context) error {
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeStore) ListCustomers(context.Context) ([]storage.CustomerEntity, error) {
	return f.customers, nil
}

func (f *fakeStore) AddCustomer(_ context.Context, rec storage.CustomerEntity) (storage.CustomerEntity, error) {
	rec.PartitionKey = "Customer"
	rec.RowKey = fmt.Sprintf("row-%d", len(f.customers))
	f.customers = append(f.customers, rec)
	return rec, nil
}

func (f *fakeStore) ListProducts(context.Context) ([]storage.ProductEntity, error) {
	return f.products, f.listProductsErr
}

func (f *fakeStore) AddProduct(_ context.Context, rec storage.ProductEntity) (storage.ProductEntity, error) {
	rec.PartitionKey = "Product"
	rec.RowKey = fmt.Sprintf("row-%d", len(f.products))
	f.products = append(f.products, rec)
	return rec, nil
}

func (f *fakeStore) QueueLength(context.Context) (int, error) {
	return len(f.messages), nil
}

func (f *fakeStore) EnqueueMessage(_ context.Context, text string) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeStore) ListContracts(context.Context) ([]string, error) {
	names := make([]string, 0, len(f.contracts))
	for name := range f.contracts {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeStore) UploadContract(_ context.Context, name string, content []byte) error {
	f.contracts[name] = content
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunSeedsEmptyBackends(t *testing.T) {
	store := newFakeStore()
	s := New(store, testLogger())

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, 1, store.ensureCalls)
	assert.Len(t, store.customers, 5)
	assert.Len(t, store.products, 5)
	assert.Len(t, store.messages, 5)
	assert.Len(t, store.contracts, 5)

	assert.Equal(t, "Customer1", store.customers[0].FirstName)
	assert.Equal(t, "customer3@demo.local", store.customers[2].Email)
	assert.Equal(t, "SKU-001", store.products[0].SKU)
	assert.Equal(t, 10, store.products[0].Stock)
	assert.Equal(t, "Processing order #1001", store.messages[0])
	assert.Equal(t, "Processing order #1005", store.messages[4])
	assert.Contains(t, store.contracts, "Contract_1.txt")
	assert.Contains(t, store.contracts, "Contract_5.txt")
}

func TestRunTopsUpByFiveNotToFive(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 3; i++ {
		_, err := store.AddCustomer(context.Background(), storage.CustomerEntity{FirstName: "Existing"})
		require.NoError(t, err)
	}

	s := New(store, testLogger())
	require.NoError(t, s.Run(context.Background()))

	// 3 existing + 5 seeded: the top-up adds a fixed five, it does not
	// fill to the threshold.
	assert.Len(t, store.customers, 8)
}

func TestRunSkipsSatisfiedBackends(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		_, err := store.AddCustomer(ctx, storage.CustomerEntity{FirstName: "Existing"})
		require.NoError(t, err)
	}

	s := New(store, testLogger())
	require.NoError(t, s.Run(ctx))

	assert.Len(t, store.customers, 6, "already above threshold, untouched")
	assert.Len(t, store.products, 5, "other backends still seeded")
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	store := newFakeStore()
	store.listProductsErr = errors.New("backend down")

	s := New(store, testLogger())
	err := s.Run(context.Background())
	require.Error(t, err)

	assert.Len(t, store.customers, 5, "customers were seeded before the failure")
	assert.Empty(t, store.messages, "steps after the failure are skipped")
	assert.Empty(t, store.contracts)
}

func TestRunEnsureFailureStopsEverything(t *testing.T) {
	store := newFakeStore()
	store.ensureErr = errors.New("no connectivity")

	s := New(store, testLogger())
	require.Error(t, s.Run(context.Background()))
	assert.Empty(t, store.customers)
}

func TestRunOnlyOnce(t *testing.T) {
	store := newFakeStore()
	s := New(store, testLogger())
	ctx := context.Background()

	require.NoError(t, s.Run(ctx))
	require.NoError(t, s.Run(ctx))

	assert.Equal(t, 1, store.ensureCalls)
	assert.Len(t, store.customers, 5)
}

func TestFreshSeederOvershootsUnderThreshold(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	require.NoError(t, New(store, testLogger()).Run(ctx))
	// Drop below threshold and run a fresh seeder, as a restarted process
	// would.
	store.customers = store.customers[:4]
	require.NoError(t, New(store, testLogger()).Run(ctx))

	assert.Len(t, store.customers, 9, "each under-threshold run blindly adds five")
}

func TestContractBodyCarriesTimestamp(t *testing.T) {
	store := newFakeStore()
	s := New(store, testLogger())
	s.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	}

	require.NoError(t, s.Run(context.Background()))

	body := string(store.contracts["Contract_2.txt"])
	assert.Equal(t, "Contract 2 for demo purposes. Date: 2025-06-01 12:30:00Z", body)
}
