// Package future implements cooperative poll-based futures. A Future makes
// progress only when polled; the executor owns the polling loop, so an
// entirely synchronous chain resolves without ever scheduling work elsewhere.
package future

// Result holds either a value or an error.
type Result[T any] struct {
	Value T
	Error error
}

// IsOk returns true if the result is not an error.
func (r Result[T]) IsOk() bool { return r.Error == nil }

// IsErr returns true if the result is an error.
func (r Result[T]) IsErr() bool { return r.Error != nil }

// Future represents a result that will be available at some point. When the
// poll function is nil the future is ready and result is valid.
type Future[T any] struct {
	result Result[T]
	poll   func() (Result[T], bool)
}

// New constructs a future from a poll function. When the value is ready, poll
// must return it with true; otherwise a zero result with false.
func New[T any](poll func() (Result[T], bool)) Future[T] {
	return Future[T]{poll: poll}
}

// IsReady returns true if the future's value is ready.
func (f Future[T]) IsReady() bool { return f.poll == nil }

// Result returns the future's result. Valid only once IsReady is true.
func (f Future[T]) Result() Result[T] { return f.result }

// Poll drives the future and its dependencies one step.
func (f *Future[T]) Poll() {
	if f.poll != nil {
		var ok bool
		if f.result, ok = f.poll(); ok {
			f.poll = nil
		}
	}
}

// Ok returns a future that is immediately ready with the given value.
func Ok[T any](v T) Future[T] {
	return Future[T]{result: Result[T]{Value: v}}
}

// Err returns a future that is immediately ready with the given error.
func Err[T any](err error) Future[T] {
	return Future[T]{result: Result[T]{Error: err}}
}

// Map converts a future's result using fn.
func Map[T, U any](f Future[T], fn func(Result[T]) Result[U]) Future[U] {
	if f.IsReady() {
		return Future[U]{result: fn(f.result)}
	}
	return Future[U]{poll: func() (Result[U], bool) {
		f.Poll()
		if f.IsReady() {
			return fn(f.result), true
		}
		return Result[U]{}, false
	}}
}

// MapOk converts a future's value using fn; errors pass through untouched.
func MapOk[T, U any](f Future[T], fn func(T) U) Future[U] {
	return Map(f, func(r Result[T]) Result[U] {
		if r.IsErr() {
			return Result[U]{Error: r.Error}
		}
		return Result[U]{Value: fn(r.Value)}
	})
}

// Then invokes fn when f resolves and returns a future that resolves when
// fn's return value resolves.
func Then[T, U any](f Future[T], fn func(Result[T]) Future[U]) Future[U] {
	if f.IsReady() {
		return fn(f.result)
	}
	var then Future[U]
	hasThen := false
	return Future[U]{poll: func() (Result[U], bool) {
		if !hasThen {
			f.Poll()
			if f.IsReady() {
				then = fn(f.result)
				hasThen = true
			}
		}
		if hasThen {
			then.Poll()
			if then.IsReady() {
				return then.result, true
			}
		}
		return Result[U]{}, false
	}}
}

// Join combines multiple futures into one that resolves to the values in
// order. If any future errors, the joined future resolves to that error.
func Join[T any](fs ...Future[T]) Future[[]T] {
	results := make([]T, len(fs))
	poll := func() (Result[[]T], bool) {
		ok := true
		for i := range fs {
			fs[i].Poll()
			if fs[i].IsReady() {
				r := fs[i].Result()
				if r.IsErr() {
					return Result[[]T]{Error: r.Error}, true
				}
				results[i] = r.Value
			} else {
				ok = false
			}
		}
		if ok {
			return Result[[]T]{Value: results}, true
		}
		return Result[[]T]{}, false
	}
	if r, ok := poll(); ok {
		return Future[[]T]{result: r}
	}
	return Future[[]T]{poll: poll}
}

// After resolves after all of the given futures, discarding their values. If
// any future errors, After resolves to that error.
func After[T any](fs ...Future[T]) Future[struct{}] {
	poll := func() (Result[struct{}], bool) {
		ok := true
		for i := range fs {
			fs[i].Poll()
			if fs[i].IsReady() {
				if r := fs[i].Result(); r.IsErr() {
					return Result[struct{}]{Error: r.Error}, true
				}
			} else {
				ok = false
			}
		}
		return Result[struct{}]{}, ok
	}
	if r, ok := poll(); ok {
		return Future[struct{}]{result: r}
	}
	return Future[struct{}]{poll: poll}
}
