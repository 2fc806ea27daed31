package resource

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/romdo/go-debounce"
	"go.uber.org/zap"
)

// DefaultSearchDebounce is the quiet period before a remote search fires.
const DefaultSearchDebounce = 300 * time.Millisecond

// Result is what every orchestrator operation resolves to.
type Result struct {
	Success bool      `json:"success"`
	Data    Record    `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
	// Stale is set when a newer call of the same kind was dispatched before
	// this one resolved, so its outcome was not applied to the store.
	Stale bool `json:"stale,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Error: messageOf(err), Kind: KindOf(err)}
}

// OperationRecorder receives one observation per finished operation.
type OperationRecorder interface {
	RecordOperation(ctx context.Context, kind, op, outcome string, duration time.Duration)
}

// Options configures one orchestrator instance.
type Options struct {
	// Kind labels logs and metrics, e.g. "designations".
	Kind   string
	Fields Fields
	// UniqueField is checked client-side for duplicates before create and
	// update. Empty disables the check.
	UniqueField string
	// RemoteSearch dispatches a server-side search after local filtering.
	RemoteSearch bool
	// SearchDebounce is the remote search quiet period. Zero means
	// DefaultSearchDebounce, negative dispatches synchronously.
	SearchDebounce time.Duration
	Logger         *zap.SugaredLogger
	Recorder       OperationRecorder
}

// Orchestrator sequences data service calls for one entity kind and keeps
// its Store consistent with the backend.
type Orchestrator struct {
	svc       Service
	view      ViewCoordinator
	store     *Store
	lifecycle *Lifecycle
	seq       *sequencer
	opts      Options
	logger    *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	searchMu       sync.Mutex
	pendingTerm    string
	debounced      func()
	cancelDebounce func()
}

// New creates the orchestrator and the store it owns. A nil view discards
// modal intents.
func New(svc Service, view ViewCoordinator, opts Options) *Orchestrator {
	if view == nil {
		view = noopView{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.SearchDebounce == 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		svc:       svc,
		view:      view,
		store:     NewStore(),
		lifecycle: NewLifecycle(),
		seq:       newSequencer(),
		opts:      opts,
		logger:    logger.With("kind", opts.Kind),
		ctx:       ctx,
		cancel:    cancel,
	}
	if opts.SearchDebounce > 0 {
		o.debounced, o.cancelDebounce = debounce.New(opts.SearchDebounce, o.flushSearch)
	}
	return o
}

// Close tears the screen down. In-flight calls still resolve for their
// callers but no longer touch the store.
func (o *Orchestrator) Close() {
	if !o.closed.CompareAndSwap(false, true) {
		return
	}
	if o.cancelDebounce != nil {
		o.cancelDebounce()
	}
	o.cancel()
	o.seq.invalidate(AllOps...)
	o.logger.Debugw("Resource screen closed")
}

// LoadAll replaces the items with the backend's list. A failed load leaves
// the previous items in place.
func (o *Orchestrator) LoadAll(ctx context.Context) Result {
	return o.run(ctx, OpFetchAll, func() Result {
		return o.loadList(ctx, OpFetchAll, o.listQuery())
	})
}

// LoadOne fetches the authoritative copy of id and makes it current.
func (o *Orchestrator) LoadOne(ctx context.Context, id string) Result {
	return o.run(ctx, OpFetchOne, func() Result {
		if id == "" {
			return failure(&Error{Kind: KindValidation, Op: OpFetchOne, Err: ErrMissingID})
		}
		ticket := o.seq.dispatch(OpFetchOne)
		o.lifecycle.Begin(OpFetchOne)

		env, err := o.svc.GetByID(ctx, id)
		err = o.envelopeErr(OpFetchOne, env.Success, env.Message, err)
		if err == nil && env.Data == nil {
			err = &Error{Kind: KindNotFound, Op: OpFetchOne, Message: fmt.Sprintf("record %s not found", id)}
		}
		if err != nil {
			return o.fail(OpFetchOne, ticket, err)
		}

		live := o.seq.accept(OpFetchOne, ticket, func() {
			o.store.SetCurrent(env.Data)
			o.lifecycle.Succeed(OpFetchOne)
		})
		return Result{Success: true, Data: env.Data.Clone(), Stale: !live}
	})
}

// Create validates data, creates it remotely, closes the modal and
// refreshes the list. Nothing touches the network when validation fails.
func (o *Orchestrator) Create(ctx context.Context, data Record) Result {
	return o.run(ctx, OpCreate, func() Result {
		if err := o.precheck(OpCreate, data, ""); err != nil {
			return failure(err)
		}
		if !o.lifecycle.TryBegin(OpCreate) {
			return failure(&Error{Kind: KindConflict, Op: OpCreate, Err: ErrInFlight})
		}
		ticket := o.seq.dispatch(OpCreate)

		env, err := o.svc.Create(ctx, data)
		if err = o.envelopeErr(OpCreate, env.Success, env.Message, err); err != nil {
			return o.fail(OpCreate, ticket, err)
		}

		live := o.seq.accept(OpCreate, ticket, func() {
			o.lifecycle.Succeed(OpCreate)
			o.store.SetCurrent(nil)
		})
		if live {
			o.view.CloseModal()
		}
		o.refresh(ctx, OpCreate)
		return Result{Success: true, Data: env.Data.Clone(), Stale: !live}
	})
}

// Update validates the merged record, updates it remotely, closes the modal
// and refreshes. On failure current is left as it was.
func (o *Orchestrator) Update(ctx context.Context, id string, data Record) Result {
	return o.run(ctx, OpUpdate, func() Result {
		if id == "" {
			return failure(&Error{Kind: KindValidation, Op: OpUpdate, Err: ErrMissingID})
		}
		if err := o.precheck(OpUpdate, data, id); err != nil {
			return failure(err)
		}
		if !o.lifecycle.TryBegin(OpUpdate) {
			return failure(&Error{Kind: KindConflict, Op: OpUpdate, Err: ErrInFlight})
		}
		ticket := o.seq.dispatch(OpUpdate)

		env, err := o.svc.Update(ctx, id, data)
		if err = o.envelopeErr(OpUpdate, env.Success, env.Message, err); err != nil {
			return o.fail(OpUpdate, ticket, err)
		}

		live := o.seq.accept(OpUpdate, ticket, func() {
			o.lifecycle.Succeed(OpUpdate)
			o.store.SetCurrent(nil)
		})
		if live {
			o.view.CloseModal()
		}
		o.refresh(ctx, OpUpdate)
		return Result{Success: true, Data: env.Data.Clone(), Stale: !live}
	})
}

// Delete removes id remotely. On failure the confirmation stays open.
func (o *Orchestrator) Delete(ctx context.Context, id string) Result {
	return o.run(ctx, OpDelete, func() Result {
		if id == "" {
			return failure(&Error{Kind: KindValidation, Op: OpDelete, Err: ErrMissingID})
		}
		if !o.lifecycle.TryBegin(OpDelete) {
			return failure(&Error{Kind: KindConflict, Op: OpDelete, Err: ErrInFlight})
		}
		ticket := o.seq.dispatch(OpDelete)

		env, err := o.svc.Delete(ctx, id)
		if err = o.envelopeErr(OpDelete, env.Success, env.Message, err); err != nil {
			return o.fail(OpDelete, ticket, err)
		}

		o.seq.accept(OpDelete, ticket, func() {
			o.lifecycle.Succeed(OpDelete)
			o.store.Remove(id)
		})
		o.view.CloseModal()
		o.refresh(ctx, OpDelete)
		return Result{Success: true, Data: env.Data.Clone()}
	})
}

// Search applies term locally right away and, with RemoteSearch, schedules
// a debounced server-side search whose results replace the items.
func (o *Orchestrator) Search(ctx context.Context, term string) Result {
	return o.run(ctx, OpSearch, func() Result {
		o.store.SetSearchTerm(term)
		if !o.opts.RemoteSearch {
			return Result{Success: true}
		}
		if o.debounced == nil {
			return o.loadList(ctx, OpSearch, o.searchQuery(term))
		}
		o.searchMu.Lock()
		o.pendingTerm = term
		o.searchMu.Unlock()
		o.debounced()
		return Result{Success: true}
	})
}

func (o *Orchestrator) flushSearch() {
	o.searchMu.Lock()
	term := o.pendingTerm
	o.searchMu.Unlock()

	res := o.run(o.ctx, OpSearch, func() Result {
		return o.loadList(o.ctx, OpSearch, o.searchQuery(term))
	})
	if !res.Success {
		o.logger.Warnw("Remote search failed", "term", term, "error", res.Error)
	}
}

// SetFilters patches the active field filters.
func (o *Orchestrator) SetFilters(patch map[string]string) {
	o.store.SetFilters(patch)
}

// SetSort changes the sort key and direction.
func (o *Orchestrator) SetSort(key string, direction Direction) {
	o.store.SetSort(key, direction)
}

// OpenAdd clears the selection and opens the add form.
func (o *Orchestrator) OpenAdd() {
	o.store.SetCurrent(nil)
	o.view.OpenAdd()
}

// OpenView selects record, opens the view modal and hydrates it.
func (o *Orchestrator) OpenView(ctx context.Context, record Record) Result {
	o.store.SetCurrent(record)
	o.view.OpenView(record)
	return o.LoadOne(ctx, record.ID())
}

// OpenEdit selects record, opens the edit form and hydrates it.
func (o *Orchestrator) OpenEdit(ctx context.Context, record Record) Result {
	o.store.SetCurrent(record)
	o.view.OpenEdit(record)
	return o.LoadOne(ctx, record.ID())
}

// OpenDelete selects record and opens the delete confirmation.
func (o *Orchestrator) OpenDelete(record Record) {
	o.store.SetCurrent(record)
	o.view.OpenDelete(record)
}

// CloseModal drops interest in any in-flight fetch-one, create or update
// and clears the selection.
func (o *Orchestrator) CloseModal() {
	o.seq.invalidate(OpFetchOne, OpCreate, OpUpdate)
	for _, k := range []OpKind{OpFetchOne, OpCreate, OpUpdate} {
		if o.lifecycle.IsPending(k) {
			o.lifecycle.Reset(k)
		}
	}
	o.store.SetCurrent(nil)
	o.view.CloseModal()
}

// DisplayList derives the visible rows from the store.
func (o *Orchestrator) DisplayList() []Record {
	return DeriveDisplayList(o.store.Items(), o.store.SearchTerm(), o.store.Filters(), o.store.Sort(), o.opts.Fields)
}

func (o *Orchestrator) Items() []Record { return o.store.Items() }

func (o *Orchestrator) Current() Record { return o.store.Current() }

func (o *Orchestrator) SearchTerm() string { return o.store.SearchTerm() }

func (o *Orchestrator) State(kind OpKind) OpState { return o.lifecycle.State(kind) }

func (o *Orchestrator) IsPending(kind OpKind) bool { return o.lifecycle.IsPending(kind) }

func (o *Orchestrator) IsAnyPending() bool { return o.lifecycle.IsAnyPending() }

func (o *Orchestrator) Kind() string { return o.opts.Kind }

// loadList runs a list-writing call and applies it only when no newer list
// write was dispatched meanwhile.
func (o *Orchestrator) loadList(ctx context.Context, op OpKind, q ListQuery) Result {
	ticket := o.seq.dispatch(op)
	o.lifecycle.Begin(op)

	env, err := o.svc.ListAll(ctx, q)
	if err = o.envelopeErr(op, env.Success, env.Message, err); err != nil {
		return o.fail(op, ticket, err)
	}

	applied := o.seq.acceptList(op, ticket, func() {
		o.store.ReplaceAll(env.Data)
		o.lifecycle.Succeed(op)
	})
	if !applied {
		o.seq.accept(op, ticket, func() { o.lifecycle.Succeed(op) })
		o.logger.Debugw("Discarded stale list response", "op", op, "ticket", ticket)
		return Result{Success: true, Stale: true}
	}
	return Result{Success: true}
}

func (o *Orchestrator) refresh(ctx context.Context, after OpKind) {
	if res := o.LoadAll(ctx); !res.Success {
		o.logger.Warnw("List refresh after mutation failed", "after", after, "error", res.Error)
	}
}

func (o *Orchestrator) listQuery() ListQuery {
	if !o.opts.RemoteSearch {
		return ListQuery{}
	}
	return o.searchQuery(o.store.SearchTerm())
}

func (o *Orchestrator) searchQuery(term string) ListQuery {
	s := o.store.Sort()
	return ListQuery{
		Search:    strings.TrimSpace(term),
		Filters:   o.store.Filters(),
		SortBy:    s.Key,
		SortOrder: s.Direction,
	}
}

// precheck runs validation and the duplicate-name check. Failures are
// recorded on the lifecycle unless a call of that kind is still pending.
func (o *Orchestrator) precheck(op OpKind, data Record, id string) error {
	err := o.validate(op, data, id)
	if err != nil && !o.lifecycle.IsPending(op) {
		o.lifecycle.Fail(op, messageOf(err))
	}
	return err
}

func (o *Orchestrator) validate(op OpKind, data Record, id string) error {
	candidate := data
	if id != "" {
		for _, item := range o.store.Items() {
			if item.ID() == id {
				candidate = item.Merge(data)
				break
			}
		}
	}
	if vr := o.svc.Validate(candidate); !vr.IsValid {
		msg := strings.Join(vr.Errors, "; ")
		if msg == "" {
			msg = "invalid input"
		}
		return &Error{Kind: KindValidation, Op: op, Message: msg}
	}

	field := o.opts.UniqueField
	if field == "" {
		return nil
	}
	v, ok := present(candidate, field)
	if !ok {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(StringOf(v)))
	for _, item := range o.store.Items() {
		if item.ID() == id {
			continue
		}
		other, ok := present(item, field)
		if ok && strings.ToLower(strings.TrimSpace(StringOf(other))) == needle {
			return &Error{Kind: KindConflict, Op: op, Message: fmt.Sprintf("%s %q already exists", field, StringOf(v))}
		}
	}
	return nil
}

func (o *Orchestrator) envelopeErr(op OpKind, success bool, message string, err error) error {
	if err != nil {
		if _, ok := err.(*Error); ok {
			return err
		}
		return &Error{Kind: KindOf(err), Op: op, Err: err}
	}
	if !success {
		if message == "" {
			message = "request was rejected"
		}
		return &Error{Kind: KindUnknown, Op: op, Message: message}
	}
	return nil
}

func (o *Orchestrator) fail(op OpKind, ticket uint64, err error) Result {
	live := o.seq.accept(op, ticket, func() {
		o.lifecycle.Fail(op, messageOf(err))
	})
	o.logger.Warnw("Resource operation failed", "op", op, "error", err, "stale", !live)
	res := failure(err)
	res.Stale = !live
	return res
}

// run converts panics into results and records the outcome.
func (o *Orchestrator) run(ctx context.Context, op OpKind, fn func() Result) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Errorw("Resource operation panicked", "op", op, "panic", r)
			o.lifecycle.Fail(op, fmt.Sprint(r))
			res = Result{Success: false, Error: fmt.Sprint(r), Kind: KindUnknown}
		}
		o.record(ctx, op, res, time.Since(start))
	}()
	if o.closed.Load() {
		return failure(&Error{Kind: KindUnknown, Op: op, Err: ErrClosed})
	}
	return fn()
}

func (o *Orchestrator) record(ctx context.Context, op OpKind, res Result, d time.Duration) {
	if o.opts.Recorder == nil {
		return
	}
	outcome := "success"
	switch {
	case res.Stale:
		outcome = "stale"
	case !res.Success:
		outcome = "failure"
	}
	o.opts.Recorder.RecordOperation(ctx, o.opts.Kind, string(op), outcome, d)
}
