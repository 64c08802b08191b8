package answer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// mathFuncs are the functions available inside learner expressions.
var mathFuncs = map[string]func(float64) float64{
	"sqrt": math.Sqrt,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"ln":   math.Log,
	"log":  math.Log10,
	"exp":  math.Exp,
}

// constants are identifiers that are never treated as free variables.
var constants = map[string]float64{
	"pi": math.Pi,
}

var (
	identRe = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)

	// Implicit multiplication: "2x", "2(x+1)", ")(" and ")x".
	numThenIdentRe = regexp.MustCompile(`(\d)\s*([a-zA-Z(])`)
	closeThenRe    = regexp.MustCompile(`\)\s*([a-zA-Z0-9(])`)
)

var exprReplacer = strings.NewReplacer(
	"·", "*",
	"×", "*",
	"÷", "/",
	"−", "-",
	"√", "sqrt",
	"π", "pi",
)

// NormalizeExpression rewrites common math notation into expr syntax.
// Unicode operators are replaced and implicit multiplication such as
// "2x" or "(x+1)(x-1)" becomes explicit.
func NormalizeExpression(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = exprReplacer.Replace(s)
	for {
		next := numThenIdentRe.ReplaceAllString(s, "$1*$2")
		next = closeThenRe.ReplaceAllString(next, ")*$1")
		if next == s {
			break
		}
		s = next
	}
	return s
}

// Variables returns the sorted free variables of a normalized expression.
func Variables(s string) []string {
	seen := make(map[string]bool)
	for _, id := range identRe.FindAllString(s, -1) {
		if _, ok := mathFuncs[id]; ok {
			continue
		}
		if _, ok := constants[id]; ok {
			continue
		}
		seen[id] = true
	}
	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// compile compiles a normalized expression with the given free variables
// bound as float64.
func compile(code string, vars []string) (*vm.Program, error) {
	env := make(map[string]any, len(vars)+len(constants))
	for _, v := range vars {
		env[v] = 0.0
	}
	for k, v := range constants {
		env[k] = v
	}

	opts := []expr.Option{expr.Env(env)}
	for name, fn := range mathFuncs {
		fn := fn
		opts = append(opts, expr.Function(name, func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("expects one argument")
			}
			x, ok := toFloat(params[0])
			if !ok {
				return nil, fmt.Errorf("expects a number")
			}
			return fn(x), nil
		}))
	}

	prog, err := expr.Compile(code, opts...)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", code, err)
	}
	return prog, nil
}

// evalAt runs prog with the variables bound to values.
func evalAt(prog *vm.Program, values map[string]float64) (float64, error) {
	env := make(map[string]any, len(values)+len(constants))
	for k, v := range values {
		env[k] = v
	}
	for k, v := range constants {
		env[k] = v
	}
	out, err := expr.Run(prog, env)
	if err != nil {
		return 0, err
	}
	f, ok := toFloat(out)
	if !ok {
		return 0, fmt.Errorf("expression is not numeric: %v", out)
	}
	return f, nil
}

// EvalNumber evaluates a constant expression such as "3/2" or "sqrt(2)".
func EvalNumber(s string) (float64, error) {
	if v, err := ParseNumber(s); err == nil {
		return v, nil
	}
	code := NormalizeExpression(s)
	if vars := Variables(code); len(vars) > 0 {
		return 0, fmt.Errorf("unexpected variables %v", vars)
	}
	prog, err := compile(code, nil)
	if err != nil {
		return 0, err
	}
	v, err := evalAt(prog, nil)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
