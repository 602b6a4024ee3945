package pixelbasher

import (
	"fmt"

	"github.com/knetic/govaluate"
)

// Criteria is a boolean expression over the statistics of a page, such as
// "red > 0 || yellow_ratio > 0.01". The variables are red, yellow,
// red_ratio, yellow_ratio, persistent, fixed, page, base_ratio and
// candidate_ratio.
type Criteria struct {
	source string
	expr   *govaluate.EvaluableExpression
}

var criteriaFunctions = map[string]govaluate.ExpressionFunction{
	"abs": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs takes one argument, got %d", len(args))
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("abs: expected a number, got %T", args[0])
		}
		if v < 0 {
			v = -v
		}
		return v, nil
	},
}

// ParseCriteria compiles expr.
func ParseCriteria(expr string) (*Criteria, error) {
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, criteriaFunctions)
	if err != nil {
		return nil, fmt.Errorf("parsing criteria %q: %w", expr, err)
	}
	return &Criteria{source: expr, expr: e}, nil
}

func (c *Criteria) String() string {
	return c.source
}

// Fails reports whether the page statistics satisfy the expression.
func (c *Criteria) Fails(s PageStats) (bool, error) {
	params := map[string]interface{}{
		"red":             float64(s.Red),
		"yellow":          float64(s.Yellow),
		"red_ratio":       s.RedRatio,
		"yellow_ratio":    s.YellowRatio,
		"persistent":      float64(s.Persistent),
		"fixed":           float64(s.Fixed),
		"page":            float64(s.Page),
		"base_ratio":      s.BaseRatio,
		"candidate_ratio": s.CandidateRatio,
	}
	result, err := c.expr.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("evaluating criteria %q: %w", c.source, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("criteria %q evaluated to %v, not a boolean", c.source, result)
	}
	return b, nil
}
