package symbols

import (
	"testing"

	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

func TestShadowingRestoresOuterBinding(t *testing.T) {
	env := NewEnvironment()
	env.DefineVariable("x", typesystem.Int)

	env.EnterScope()
	env.DefineVariable("x", typesystem.String)

	got, ok := env.LookupVariable("x")
	if !ok || !typesystem.Equal(got, typesystem.String) {
		t.Fatalf("inner lookup = %v, want string", got)
	}

	env.ExitScope()

	got, ok = env.LookupVariable("x")
	if !ok || !typesystem.Equal(got, typesystem.Int) {
		t.Fatalf("outer lookup after exit = %v, want int", got)
	}
}

func TestLookupAbsenceIsDistinct(t *testing.T) {
	env := NewEnvironment()
	if _, ok := env.LookupVariable("missing"); ok {
		t.Fatalf("lookup of unbound name should report absence")
	}
	if _, ok := env.LookupFunction("missing"); ok {
		t.Fatalf("function lookup of unbound name should report absence")
	}
}

func TestInnerScopeSeesOuterBindings(t *testing.T) {
	env := NewEnvironment()
	env.DefineVariable("a", typesystem.Bool)
	env.EnterScope()
	env.EnterScope()

	if got, ok := env.LookupVariable("a"); !ok || !typesystem.Equal(got, typesystem.Bool) {
		t.Fatalf("nested lookup = %v, want bool", got)
	}

	env.ExitScope()
	env.ExitScope()
	if env.Depth() != 1 {
		t.Fatalf("depth after paired exits = %d, want 1", env.Depth())
	}
}

func TestExitRootScopePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("ExitScope on root must panic")
		}
	}()
	NewEnvironment().ExitScope()
}

func TestTypeParamsAreScopedUserTypesAreGlobal(t *testing.T) {
	env := NewEnvironment()
	point := &typesystem.Record{Name: "Point"}
	env.DefineType("Point", point)

	env.EnterScope()
	tp := &typesystem.TypeParam{Name: "T"}
	env.DefineType("T", tp)

	if got, ok := env.LookupType("T"); !ok || got != typesystem.Type(tp) {
		t.Fatalf("type parameter not visible in its scope")
	}
	if got, ok := env.LookupType("Point"); !ok || got != typesystem.Type(point) {
		t.Fatalf("global type not visible inside scope")
	}

	env.ExitScope()

	if _, ok := env.LookupType("T"); ok {
		t.Fatalf("type parameter leaked out of its scope")
	}
	if _, ok := env.LookupType("Point"); !ok {
		t.Fatalf("user type should remain globally visible")
	}
}

func TestDefineFunctionLastWriteWins(t *testing.T) {
	env := NewEnvironment()
	env.DefineFunction(&Signature{Name: "f", Return: typesystem.Int})
	env.DefineFunction(&Signature{Name: "f", Return: typesystem.Float})

	sig, ok := env.LookupFunction("f")
	if !ok {
		t.Fatalf("function not found")
	}
	if !typesystem.Equal(sig.Return, typesystem.Float) {
		t.Errorf("last write should win, got return %s", sig.Return)
	}
}
