// Package mongo provides MongoDB connection management and the per-model
// datastore adapters consumed by the write queue.
//
// Connection setup is environment-driven with retry logic for transient
// failures and pool defaults that work without manual tuning. The
// CollectionStore adapter maps the queue's create/update/delete/upsert
// operations onto a single collection, so wiring a model is one Register
// call.
//
// # Usage
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "craftdesk")
//	if err != nil {
//	    return err
//	}
//
//	reg := writequeue.NewRegistry()
//	mongo.RegisterModels(reg, db, "jobs", "invoices", "payments", "messages")
//
// # Error Handling
//
// Connection failures are wrapped in package sentinel errors; use errors.Is
// to detect them. Write errors from the driver pass through the adapter
// unchanged so the queue's retry policy can act on them.
package mongo
