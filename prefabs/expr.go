package prefabs

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"gopkg.in/yaml.v3"
)

var ErrExpr = errors.New("prefabs: invalid expression")

// Expr is a number written either literally or as a tengo expression over
// the math module, for example "math.pi / 2".
type Expr float64

func (e *Expr) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: %w: expected a scalar", value.Line, ErrExpr)
	}
	if v, err := strconv.ParseFloat(value.Value, 64); err == nil {
		*e = Expr(v)
		return nil
	}
	v, err := Eval(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*e = Expr(v)
	return nil
}

// Eval evaluates src as a tengo expression and returns its value as a float.
func Eval(src string) (float64, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return 0, fmt.Errorf("%w: empty", ErrExpr)
	}

	script := tengo.NewScript([]byte("math := import(\"math\")\n__value := float(" + src + ")"))
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrExpr, src, err)
	}
	if err := compiled.Run(); err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrExpr, src, err)
	}

	v := compiled.Get("__value")
	if v.ValueType() != "float" {
		return 0, fmt.Errorf("%w: %q is %s", ErrExpr, src, v.ValueType())
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrExpr, src)
	}
	return f, nil
}
