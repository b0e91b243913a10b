package trigger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eduapp-backend/pkg/docstore"
	"eduapp-backend/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandlerFunc handles one invocation. A returned error marks the invocation
// failed; it is logged and never retried.
type HandlerFunc func(ctx context.Context, inv Invocation) error

// Invocation is what a handler receives for one matching event.
type Invocation struct {
	Trigger string
	Event   Event
	Params  Params
}

// Trigger binds a handler to a change kind on a path pattern.
type Trigger struct {
	Name    string
	Pattern Pattern
	Kind    Kind
	Handler HandlerFunc
}

// Result reports the outcome of one invocation.
type Result struct {
	Trigger  string        `json:"trigger"`
	EventID  string        `json:"event_id"`
	Path     string        `json:"path"`
	Params   Params        `json:"params,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

func (r Result) OK() bool { return r.Err == nil }

// Bus routes change events to the registered triggers.
type Bus struct {
	mu       sync.RWMutex
	triggers []Trigger
	log      *logger.Logger
	timeout  time.Duration
	tracer   trace.Tracer
}

type Option func(*Bus)

// WithTimeout bounds each invocation; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(b *Bus) { b.timeout = d }
}

func NewBus(log *logger.Logger, opts ...Option) *Bus {
	b := &Bus{
		log:    log,
		tracer: otel.Tracer("eduapp-backend/trigger"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Register(t Trigger) error {
	if t.Name == "" || t.Handler == nil {
		return errors.New("trigger needs a name and a handler")
	}
	if len(t.Pattern.segments) == 0 {
		return fmt.Errorf("trigger %s has no pattern", t.Name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.triggers {
		if existing.Name == t.Name {
			return fmt.Errorf("trigger %s already registered", t.Name)
		}
	}
	b.triggers = append(b.triggers, t)
	b.log.Debug("trigger registered", "trigger", t.Name, "pattern", t.Pattern.String(), "kind", t.Kind.String())
	return nil
}

// Triggers returns a copy of the registered bindings.
func (b *Bus) Triggers() []Trigger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Trigger(nil), b.triggers...)
}

// Dispatch runs every trigger matching the event and waits for all of them.
// Matching invocations run concurrently and do not affect one another.
func (b *Bus) Dispatch(ctx context.Context, evt Event) []Result {
	var matched []Invocation
	var handlers []HandlerFunc
	b.mu.RLock()
	for _, t := range b.triggers {
		if !t.Kind.accepts(evt.Type) {
			continue
		}
		params, ok := t.Pattern.Match(evt.Path)
		if !ok {
			continue
		}
		matched = append(matched, Invocation{Trigger: t.Name, Event: evt, Params: params})
		handlers = append(handlers, t.Handler)
	}
	b.mu.RUnlock()

	results := make([]Result, len(matched))
	var wg sync.WaitGroup
	for i := range matched {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.invoke(ctx, handlers[i], matched[i])
		}(i)
	}
	wg.Wait()
	return results
}

// Attach feeds every change of a memory store into the bus. Results are
// handed to a collector on the writer's context, see CollectResults.
func (b *Bus) Attach(store *docstore.Memory) {
	store.Watch(func(ctx context.Context, c docstore.Change) {
		results := b.Dispatch(ctx, FromChange(c))
		if col, ok := ctx.Value(collectorKey{}).(*collector); ok {
			col.add(results)
		}
	})
}

type collectorKey struct{}

type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) add(results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, results...)
}

func (c *collector) snapshot() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...)
}

// CollectResults returns a context that gathers the results of every
// dispatch an attached store performs for writes made with it, including
// writes made by the triggers themselves.
func CollectResults(ctx context.Context) (context.Context, func() []Result) {
	col := &collector{}
	return context.WithValue(ctx, collectorKey{}, col), col.snapshot
}

func (b *Bus) invoke(ctx context.Context, h HandlerFunc, inv Invocation) (res Result) {
	start := time.Now()
	res = Result{Trigger: inv.Trigger, EventID: inv.Event.ID, Path: inv.Event.Path, Params: inv.Params}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	ctx, span := b.tracer.Start(ctx, "trigger."+inv.Trigger, trace.WithAttributes(
		attribute.String("trigger.event_id", inv.Event.ID),
		attribute.String("trigger.path", inv.Event.Path),
		attribute.String("trigger.change", string(inv.Event.Type)),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("trigger %s panicked: %v", inv.Trigger, r)
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(otelcodes.Error, res.Err.Error())
			b.log.Error("trigger failed", "trigger", inv.Trigger, "event_id", inv.Event.ID, "path", inv.Event.Path, "error", res.Err)
			return
		}
		b.log.Debug("trigger completed", "trigger", inv.Trigger, "event_id", inv.Event.ID, "path", inv.Event.Path, "duration", res.Duration)
	}()

	res.Err = h(ctx, inv)
	return res
}
