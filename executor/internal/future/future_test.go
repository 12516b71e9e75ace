package future

import (
	"errors"
	"testing"
)

func TestOkAndErrAreImmediatelyReady(t *testing.T) {
	f := Ok(1)
	if !f.IsReady() || f.Result().Value != 1 {
		t.Fatalf("Ok future not ready with value")
	}
	e := Err[int](errors.New("boom"))
	if !e.IsReady() || e.Result().Error == nil {
		t.Fatalf("Err future not ready with error")
	}
}

func TestMapOkTransformsValues(t *testing.T) {
	ready := false
	f := New(func() (Result[int], bool) {
		if !ready {
			return Result[int]{}, false
		}
		return Result[int]{Value: 2}, true
	})
	mapped := MapOk(f, func(v int) int { return v * 10 })

	mapped.Poll()
	if mapped.IsReady() {
		t.Fatalf("future resolved before its dependency")
	}
	ready = true
	mapped.Poll()
	if !mapped.IsReady() || mapped.Result().Value != 20 {
		t.Fatalf("unexpected result: %+v", mapped.Result())
	}
}

func TestThenChainsFutures(t *testing.T) {
	f := Then(Ok(3), func(r Result[int]) Future[int] {
		return Ok(r.Value + 1)
	})
	if !f.IsReady() || f.Result().Value != 4 {
		t.Fatalf("unexpected result: %+v", f.Result())
	}
}

func TestJoinPreservesOrderAndShortCircuitsOnError(t *testing.T) {
	j := Join(Ok(1), Ok(2), Ok(3))
	if !j.IsReady() {
		t.Fatalf("join of ready futures must be ready")
	}
	got := j.Result().Value
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("unexpected join result: %v", got)
	}

	e := Join(Ok(1), Err[int](errors.New("boom")))
	if !e.IsReady() || e.Result().Error == nil {
		t.Fatalf("join must surface the error")
	}
}

func TestAfterWaitsForAll(t *testing.T) {
	ready := false
	pending := New(func() (Result[int], bool) {
		if !ready {
			return Result[int]{}, false
		}
		return Result[int]{Value: 1}, true
	})
	a := After(Ok(0), pending)
	a.Poll()
	if a.IsReady() {
		t.Fatalf("After resolved before all dependencies")
	}
	ready = true
	a.Poll()
	if !a.IsReady() {
		t.Fatalf("After did not resolve")
	}
}
