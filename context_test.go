package shroud

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRolesFrom_Missing(t *testing.T) {
	r, ok := RolesFrom(context.Background())
	if ok {
		t.Error("RolesFrom() ok = true for empty context")
	}
	if !r.IsZero() {
		t.Errorf("RolesFrom() = %v, want zero", r.Names())
	}
}

func TestRolesFrom_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is tolerated
	if _, ok := RolesFrom(nil); ok {
		t.Error("RolesFrom(nil) ok = true")
	}
}

func TestWithRoles(t *testing.T) {
	ctx := WithRoles(context.Background(), NewRoles("Auditor"))

	r, ok := RolesFrom(ctx)
	if !ok {
		t.Fatal("RolesFrom() ok = false after WithRoles")
	}
	if !r.Has("Auditor") {
		t.Error("snapshot lost the Auditor role")
	}
}

func TestWithRoles_ZeroSnapshotIsSet(t *testing.T) {
	ctx := WithRoles(context.Background(), Roles{})

	if _, ok := RolesFrom(ctx); !ok {
		t.Error("an explicit empty snapshot should still report ok")
	}
}

func TestWithoutRoles_ShadowsOuter(t *testing.T) {
	outer := WithRoles(context.Background(), NewRoles("IT-DevOps"))
	inner := WithoutRoles(outer)

	r, ok := RolesFrom(inner)
	if ok || !r.IsZero() {
		t.Error("WithoutRoles should hide the outer snapshot")
	}
	if r, _ := RolesFrom(outer); !r.IsElevatedOperations() {
		t.Error("outer context should be unchanged")
	}
}

func TestRoles_RequestScoped(t *testing.T) {
	base := context.Background()

	handle := func(ctx context.Context, claims []string, fail bool) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.New("handler panicked")
			}
		}()
		ctx = WithRoles(ctx, NewRoles(claims...))
		if r, _ := RolesFrom(ctx); fail && !r.IsZero() {
			panic("boom")
		}
		return nil
	}

	if err := handle(base, []string{"IT-DevOps"}, true); err == nil {
		t.Fatal("expected the handler to fail")
	}

	// The next request on the same base context starts clean.
	if _, ok := RolesFrom(base); ok {
		t.Error("a failed request leaked its snapshot")
	}
}

func TestRoles_ConcurrentRequests(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan string, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			role := "Auditor"
			if i%2 == 0 {
				role = "HR"
			}
			ctx := WithRoles(context.Background(), NewRoles(role))
			r, _ := RolesFrom(ctx)
			if !r.Has(role) || len(r.Names()) != 1 {
				errs <- role
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for role := range errs {
		t.Errorf("request holding %s observed another request's roles", role)
	}
}
