package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/atomic"

	"github.com/abcretail/storage-gateway/storage"
)

// seedThreshold is the item count below which a backend gets topped up, and
// also the number of items each top-up inserts.
const seedThreshold = 5

// Store is the slice of the storage client the seeder drives.
type Store interface {
	EnsureResources(ctx context.Context) error

	ListCustomers(ctx context.Context) ([]storage.CustomerEntity, error)
	AddCustomer(ctx context.Context, rec storage.CustomerEntity) (storage.CustomerEntity, error)
	ListProducts(ctx context.Context) ([]storage.ProductEntity, error)
	AddProduct(ctx context.Context, rec storage.ProductEntity) (storage.ProductEntity, error)

	QueueLength(ctx context.Context) (int, error)
	EnqueueMessage(ctx context.Context, text string) error

	ListContracts(ctx context.Context) ([]string, error)
	UploadContract(ctx context.Context, name string, content []byte) error
}

// Seeder performs the one-shot startup provisioning and demo-data top-up.
type Seeder struct {
	store Store
	log   *slog.Logger
	now   func() time.Time

	done atomic.Bool
}

// New creates a Seeder over the given store.
func New(store Store, log *slog.Logger) *Seeder {
	return &Seeder{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Run provisions resources and seeds demo data. Errors abort the remaining
// steps and are returned for observability, but callers must not couple
// process liveness to the result; RunBackground is the usual entry point.
// Only the first call does anything.
func (s *Seeder) Run(ctx context.Context) error {
	if !s.done.CompareAndSwap(false, true) {
		return nil
	}

	if err := s.store.EnsureResources(ctx); err != nil {
		return fmt.Errorf("ensure resources: %w", err)
	}

	if err := s.seedCustomers(ctx); err != nil {
		return err
	}
	if err := s.seedProducts(ctx); err != nil {
		return err
	}
	if err := s.seedQueue(ctx); err != nil {
		return err
	}
	return s.seedContracts(ctx)
}

// RunBackground launches Run on its own goroutine, logging the outcome.
// Startup seeding is fire-and-forget: the host begins serving regardless.
func (s *Seeder) RunBackground(ctx context.Context) {
	go func() {
		if err := s.Run(ctx); err != nil {
			s.log.Error("Startup seeding failed", "err", err)
			return
		}
		s.log.Info("Startup seeding complete")
	}()
}

func (s *Seeder) seedCustomers(ctx context.Context) error {
	existing, err := s.store.ListCustomers(ctx)
	if err != nil {
		return fmt.Errorf("list customers: %w", err)
	}
	if len(existing) >= seedThreshold {
		return nil
	}

	for i := 1; i <= seedThreshold; i++ {
		_, err := s.store.AddCustomer(ctx, storage.CustomerEntity{
			FirstName: fmt.Sprintf("Customer%d", i),
			LastName:  "Demo",
			Email:     fmt.Sprintf("customer%d@demo.local", i),
			Phone:     fmt.Sprintf("010-000-000%d", i),
		})
		if err != nil {
			return fmt.Errorf("seed customer %d: %w", i, err)
		}
	}

	s.log.Info("Seeded customers", slog.Int("existing", len(existing)), slog.Int("added", seedThreshold))
	return nil
}

func (s *Seeder) seedProducts(ctx context.Context) error {
	existing, err := s.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(existing) >= seedThreshold {
		return nil
	}

	for i := 1; i <= seedThreshold; i++ {
		_, err := s.store.AddProduct(ctx, storage.ProductEntity{
			Name:  fmt.Sprintf("Product %d", i),
			SKU:   fmt.Sprintf("SKU-00%d", i),
			Price: 99.99 + float64(i),
			Stock: 10 * i,
		})
		if err != nil {
			return fmt.Errorf("seed product %d: %w", i, err)
		}
	}

	s.log.Info("Seeded products", slog.Int("existing", len(existing)), slog.Int("added", seedThreshold))
	return nil
}

func (s *Seeder) seedQueue(ctx context.Context) error {
	length, err := s.store.QueueLength(ctx)
	if err != nil {
		return fmt.Errorf("queue length: %w", err)
	}
	if length >= seedThreshold {
		return nil
	}

	for i := 1; i <= seedThreshold; i++ {
		if err := s.store.EnqueueMessage(ctx, fmt.Sprintf("Processing order #%d", 1000+i)); err != nil {
			return fmt.Errorf("seed message %d: %w", i, err)
		}
	}

	s.log.Info("Seeded queue messages", slog.Int("existing", length), slog.Int("added", seedThreshold))
	return nil
}

func (s *Seeder) seedContracts(ctx context.Context) error {
	existing, err := s.store.ListContracts(ctx)
	if err != nil {
		return fmt.Errorf("list contracts: %w", err)
	}
	if len(existing) >= seedThreshold {
		return nil
	}

	stamp := s.now().UTC().Format("2006-01-02 15:04:05Z")
	for i := 1; i <= seedThreshold; i++ {
		body := fmt.Sprintf("Contract %d for demo purposes. Date: %s", i, stamp)
		if err := s.store.UploadContract(ctx, fmt.Sprintf("Contract_%d.txt", i), []byte(body)); err != nil {
			return fmt.Errorf("seed contract %d: %w", i, err)
		}
	}

	s.log.Info("Seeded contracts", slog.Int("existing", len(existing)), slog.Int("added", seedThreshold))
	return nil
}
