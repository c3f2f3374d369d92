package reflect

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var (
	typeKeyCache sync.Map
	genericCache sync.Map

	errorType = reflect.TypeFor[error]()
	ctxType   = reflect.TypeFor[context.Context]()
)

var (
	ErrNotFunc          = errors.New("constructor must be a function")
	ErrNoReturn         = errors.New("constructor must return at least one value")
	ErrTooManyReturns   = errors.New("constructor must return (T) or (T, error)")
	ErrVariadic         = errors.New("variadic constructors are not supported")
	errUnbalancedBraces = errors.New("unbalanced brackets in type name")
)

// Generic describes an instantiated generic type split into its definition
// and its type arguments. Arguments are canonical type names.
type Generic struct {
	Definition string
	Args       []string
}

func TypeKeyOf(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if cached, ok := typeKeyCache.Load(t); ok {
		return cached.(string)
	}

	key := buildTypeKey(t)
	typeKeyCache.Store(t, key)
	return key
}

func buildTypeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	if t.Name() != "" {
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeKey(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeKey(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeKey(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeKey(t.Key()) + "]" + buildTypeKey(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeKey(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeKey(t.Elem())
		default:
			return "chan " + buildTypeKey(t.Elem())
		}
	default:
		return t.String()
	}
}

// GenericOf reports whether t (or the type t points to) is an instantiated
// generic type. Pointer levels are kept on the definition so *Repo[int] and
// Repo[int] stay distinct contracts.
func GenericOf(t reflect.Type) (Generic, bool) {
	if t == nil {
		return Generic{}, false
	}
	if cached, ok := genericCache.Load(t); ok {
		g := cached.(Generic)
		return g, g.Definition != ""
	}

	g := buildGeneric(t)
	genericCache.Store(t, g)
	return g, g.Definition != ""
}

func buildGeneric(t reflect.Type) Generic {
	prefix := ""
	for t.Kind() == reflect.Ptr && t.Name() == "" {
		prefix += "*"
		t = t.Elem()
	}

	name := t.Name()
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return Generic{}
	}

	args, err := splitTypeArgs(name[open+1 : len(name)-1])
	if err != nil || len(args) == 0 {
		return Generic{}
	}

	def := name[:open]
	if t.PkgPath() != "" {
		def = t.PkgPath() + "." + def
	}

	return Generic{Definition: prefix + def, Args: args}
}

// splitTypeArgs splits a type argument list on top-level commas.
func splitTypeArgs(s string) ([]string, error) {
	var (
		args  []string
		depth int
		start int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
			if depth < 0 {
				return nil, errUnbalancedBraces
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	if depth != 0 {
		return nil, errUnbalancedBraces
	}

	if last := strings.TrimSpace(s[start:]); last != "" {
		args = append(args, last)
	}
	return args, nil
}

// IsNil reports nil interfaces and typed nil pointers, maps, slices, chans
// and funcs.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

func IsComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// FuncSignature is the construction metadata extracted from a constructor.
type FuncSignature struct {
	Params     []reflect.Type
	Result     reflect.Type
	ReturnsErr bool
	TakesCtx   bool
}

// FuncParamsOf inspects a constructor of shape func([ctx,] deps...) (T[, error]).
// A leading context.Context parameter is reported via TakesCtx and excluded
// from Params.
func FuncParamsOf(ft reflect.Type) (FuncSignature, error) {
	if ft.Kind() != reflect.Func {
		return FuncSignature{}, ErrNotFunc
	}
	if ft.IsVariadic() {
		return FuncSignature{}, ErrVariadic
	}

	var sig FuncSignature
	switch ft.NumOut() {
	case 0:
		return FuncSignature{}, ErrNoReturn
	case 1:
	case 2:
		if !ft.Out(1).Implements(errorType) {
			return FuncSignature{}, ErrTooManyReturns
		}
		sig.ReturnsErr = true
	default:
		return FuncSignature{}, ErrTooManyReturns
	}
	sig.Result = ft.Out(0)

	first := 0
	if ft.NumIn() > 0 && ft.In(0) == ctxType {
		sig.TakesCtx = true
		first = 1
	}

	sig.Params = make([]reflect.Type, 0, ft.NumIn()-first)
	for i := first; i < ft.NumIn(); i++ {
		sig.Params = append(sig.Params, ft.In(i))
	}
	return sig, nil
}
