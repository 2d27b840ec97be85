// internal/app/projection/watcher.go
package projection

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Watcher is a background worker that tails the organizations change
// stream and feeds every event through the Projector. Change streams
// require a replica set; Start reports an error on standalone servers so
// the caller can fall back to the in-process write hook instead.
type Watcher struct {
	orgs      *mongo.Collection
	projector *Projector
	log       *zap.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// open is swapped in tests to exercise the reconnect policy without a
	// replica set.
	open          func(ctx context.Context, opts *options.ChangeStreamOptions) (*mongo.ChangeStream, error)
	retryInterval time.Duration
}

// NewWatcher creates a change stream watcher over the given organizations
// collection.
func NewWatcher(orgs *mongo.Collection, projector *Projector, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		orgs:          orgs,
		projector:     projector,
		log:           logger,
		retryInterval: time.Second,
	}
	w.open = func(ctx context.Context, opts *options.ChangeStreamOptions) (*mongo.ChangeStream, error) {
		return w.orgs.Watch(ctx, mongo.Pipeline{}, opts)
	}
	return w
}

// changeEvent is the subset of the change stream document the projection
// cares about. fullDocument is nil for deletes.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID interface{} `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument bson.M `bson:"fullDocument"`
}

// Start opens the change stream and begins the tail loop. It returns the
// stream-open error synchronously so callers can detect unsupported
// deployments before deciding on a sync strategy.
func (w *Watcher) Start() error {
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := w.open(ctx, streamOptions(nil))
	if err != nil {
		cancel()
		return err
	}

	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx, stream)
	w.log.Info("listing projection watcher started",
		zap.String("collection", w.orgs.Name()))
	return nil
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.log.Info("listing projection watcher stopped")
}

func (w *Watcher) run(ctx context.Context, stream *mongo.ChangeStream) {
	defer w.wg.Done()

	for {
		resumeToken := w.tail(ctx, stream)
		if ctx.Err() != nil {
			return
		}

		// The stream died out from under us. Reopen from the last token the
		// server handed us so no organization writes are missed.
		var err error
		stream, err = w.reopen(ctx, resumeToken)
		if err != nil {
			return
		}
	}
}

// tail drains the stream until it fails or ctx is cancelled, returning the
// last resume token observed so the caller can reopen where it left off.
func (w *Watcher) tail(ctx context.Context, stream *mongo.ChangeStream) bson.Raw {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stream.Close(closeCtx); err != nil {
			w.log.Warn("failed to close change stream", zap.Error(err))
		}
	}()

	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			w.log.Error("failed to decode change event", zap.Error(err))
			continue
		}
		w.handle(ev)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		w.log.Error("change stream interrupted", zap.Error(err))
	}
	return stream.ResumeToken()
}

// reopen retries the change stream under exponential backoff, resuming after
// resumeToken when one is available. It returns only with a live stream or
// the cancellation error.
func (w *Watcher) reopen(ctx context.Context, resumeToken bson.Raw) (*mongo.ChangeStream, error) {
	backoff := w.retryInterval
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)

		stream, err := w.open(ctx, streamOptions(resumeToken))
		if err != nil {
			w.log.Warn("change stream reopen failed",
				zap.Duration("retry_in", backoff),
				zap.Error(err))
			continue
		}
		w.log.Info("change stream reopened",
			zap.Bool("resumed", resumeToken != nil))
		return stream, nil
	}
}

func streamOptions(resumeToken bson.Raw) *options.ChangeStreamOptions {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if resumeToken != nil {
		opts = opts.SetResumeAfter(resumeToken)
	}
	return opts
}

const maxReconnectBackoff = time.Minute

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxReconnectBackoff {
		return maxReconnectBackoff
	}
	return d
}

func (w *Watcher) handle(ev changeEvent) {
	id := documentID(ev.DocumentKey.ID)
	if id == "" {
		w.log.Warn("change event without usable document id",
			zap.String("operation", ev.OperationType))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var after bson.M
	switch ev.OperationType {
	case "insert", "update", "replace":
		after = ev.FullDocument
		if after == nil {
			// updateLookup races document deletion; the delete event
			// that follows will remove the listing.
			w.log.Warn("update event without full document",
				zap.String("chamber_id", id))
			return
		}
	case "delete":
		after = nil
	case "drop", "invalidate":
		w.log.Warn("organizations change stream invalidated",
			zap.String("operation", ev.OperationType))
		return
	default:
		return
	}

	if err := w.projector.Apply(ctx, id, after); err != nil {
		w.log.Error("failed to apply change event",
			zap.String("chamber_id", id),
			zap.String("operation", ev.OperationType),
			zap.Error(err))
	}
}

// documentID renders the change event's _id as the string form the listing
// store keys on. Organizations use string ids, but a stray ObjectID is
// tolerated.
func documentID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return ""
	}
}
