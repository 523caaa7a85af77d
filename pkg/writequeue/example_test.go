package writequeue_test

import (
	"context"
	"fmt"
	"log"

	"github.com/craftdesk/servicekit/pkg/writequeue"
)

type noopStore struct{}

func (noopStore) Create(context.Context, map[string]any) error { return nil }
func (noopStore) Delete(context.Context, map[string]any) error { return nil }

func (noopStore) Update(context.Context, map[string]any, map[string]any) error { return nil }
func (noopStore) Upsert(context.Context, map[string]any, map[string]any) error { return nil }

// Example demonstrates wiring a manager in front of per-model datastore
// adapters and submitting a prioritized, idempotent write.
func Example() {
	ctx := context.Background()

	reg := writequeue.NewRegistry()
	reg.Register("invoices", noopStore{})

	mgr, err := writequeue.New(writequeue.NewExecutor(reg),
		writequeue.WithMaxAttempts(5),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := mgr.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = mgr.Stop() }()

	unsubscribe := mgr.Subscribe(func(evt writequeue.Event) {
		log.Printf("write %s is %s", evt.Write.ID, evt.Type)
	})
	defer unsubscribe()

	res, err := mgr.Enqueue(ctx, "invoices", writequeue.OperationCreate,
		map[string]any{"number": "INV-1042", "total": 129.99},
		writequeue.WithPriority(writequeue.PriorityHigh),
		writequeue.WithIdempotencyKey("invoice-1042"),
		writequeue.WithTenant("tenant-7"),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Message)
	// Output: completed immediately
}
