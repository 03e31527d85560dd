package callback

import (
	"github.com/rwbrown002/xgboost/pkg/errors"
)

// CallbackList is the ordered callback registry for one training run. It
// maintains insertion order with a fixed tail: callbacks named in the tail
// order are relocated to the end of the list, in tail order, so they always
// run last within the post-iteration and finalize phases.
type CallbackList struct {
	callbacks []Callback
	tailOrder []string
	byName    map[string]Callback
}

// NewCallbackList creates a registry over the given callbacks using the
// default tail relocation policy.
func NewCallbackList(callbacks ...Callback) *CallbackList {
	return NewCallbackListWithTail(DefaultTailOrder, callbacks...)
}

// NewCallbackListWithTail creates a registry with an explicit relocation
// policy: callbacks whose names appear in tailOrder are moved to the end of
// the list in that order. Only the first match of each name relocates.
func NewCallbackListWithTail(tailOrder []string, callbacks ...Callback) *CallbackList {
	cl := &CallbackList{
		callbacks: append([]Callback(nil), callbacks...),
		tailOrder: tailOrder,
	}
	cl.relocate()
	return cl
}

// Add appends a callback and re-applies the tail ordering invariant.
func (cl *CallbackList) Add(callback Callback) *CallbackList {
	cl.callbacks = append(cl.callbacks, callback)
	cl.relocate()
	return cl
}

// Callbacks returns the callbacks in relocated registry order.
func (cl *CallbackList) Callbacks() []Callback {
	return append([]Callback(nil), cl.callbacks...)
}

// Get returns the callback registered under name. With duplicate names the
// later registration shadows the earlier one.
func (cl *CallbackList) Get(name string) (Callback, bool) {
	cb, ok := cl.byName[name]
	return cb, ok
}

// relocate moves the first match of each tail name to the end of the list,
// in tail order, and rebuilds the name index.
func (cl *CallbackList) relocate() {
	for _, name := range cl.tailOrder {
		for i, cb := range cl.callbacks {
			if cb != nil && cb.Name() == name {
				cl.callbacks = append(append(cl.callbacks[:i:i], cl.callbacks[i+1:]...), cb)
				break
			}
		}
	}

	cl.byName = make(map[string]Callback, len(cl.callbacks))
	for _, cb := range cl.callbacks {
		if cb != nil {
			cl.byName[cb.Name()] = cb
		}
	}
}

// Categorize partitions the registry into the pre-iteration and
// post-iteration subsets, and independently selects every callback with a
// finalize phase. A callback may appear in both post and fin.
func (cl *CallbackList) Categorize() (pre, post, fin []Callback) {
	for _, cb := range cl.callbacks {
		if p, ok := cb.(PreIteration); ok && p.RunsBeforeIteration() {
			pre = append(pre, cb)
		} else {
			post = append(post, cb)
		}
		if _, ok := cb.(Finalizer); ok {
			fin = append(fin, cb)
		}
	}
	return pre, post, fin
}

// RunPreIteration invokes every pre-iteration callback in registry order.
// The first error aborts the run.
func (cl *CallbackList) RunPreIteration(env *Env) error {
	pre, _, _ := cl.Categorize()
	for _, cb := range pre {
		if err := cb.Call(env); err != nil {
			return errors.Wrapf(err, "pre-iteration callback %q failed", cb.Name())
		}
	}
	return nil
}

// RunPostIteration invokes every post-iteration callback in relocated
// registry order. The first error aborts the run.
func (cl *CallbackList) RunPostIteration(env *Env) error {
	_, post, _ := cl.Categorize()
	for _, cb := range post {
		if err := cb.Call(env); err != nil {
			return errors.Wrapf(err, "post-iteration callback %q failed", cb.Name())
		}
	}
	return nil
}

// RunFinalize invokes the finalize phase of every finalizer exactly once, in
// relocated registry order. The driver calls it after the loop ends,
// including after early termination.
func (cl *CallbackList) RunFinalize(env *Env) error {
	_, _, fin := cl.Categorize()
	for _, cb := range fin {
		if err := cb.(Finalizer).Finalize(env); err != nil {
			return errors.Wrapf(err, "finalize callback %q failed", cb.Name())
		}
	}
	return nil
}

// HasAll reports whether every requested name is present in the callback
// list. A malformed list (nil entries, empty or duplicate names) is a
// programming error and fails fast.
func HasAll(callbacks []Callback, names ...string) (bool, error) {
	seen := make(map[string]struct{}, len(callbacks))
	for i, cb := range callbacks {
		if cb == nil {
			return false, errors.NewValidationError("callbacks", "nil callback in list", i)
		}
		name := cb.Name()
		if name == "" {
			return false, errors.NewValidationError("callbacks", "callback with empty name", i)
		}
		if _, dup := seen[name]; dup {
			return false, errors.NewValidationError("callbacks", "duplicate callback name", name)
		}
		seen[name] = struct{}{}
	}

	for _, name := range names {
		if _, ok := seen[name]; !ok {
			return false, nil
		}
	}
	return true, nil
}
