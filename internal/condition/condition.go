// internal/condition/condition.go
package condition

import (
	"fmt"
	"strings"

	"github.com/courseloom/courseloom/internal/lesson"
	"github.com/courseloom/courseloom/internal/state"
)

// ExpressionEvaluator evaluates a custom boolean expression. The engine
// supplies a sandboxed implementation; evaluation must be synchronous and
// side-effect free.
type ExpressionEvaluator interface {
	EvalBool(expression string) (bool, error)
}

// Evaluate runs one condition against the store. The raw predicate result
// is XORed with the condition's Negate flag. Evaluation never mutates
// state.
func Evaluate(c *lesson.Condition, st *state.Store, expr ExpressionEvaluator) (bool, error) {
	raw, err := evaluate(c, st, expr)
	if err != nil {
		return false, err
	}
	return raw != c.Negate, nil
}

// EvaluateAll evaluates conditions in order with logical AND, short-
// circuiting on the first false result or error.
func EvaluateAll(conditions []lesson.Condition, st *state.Store, expr ExpressionEvaluator) (bool, error) {
	for i := range conditions {
		ok, err := Evaluate(&conditions[i], st, expr)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evaluate(c *lesson.Condition, st *state.Store, expr ExpressionEvaluator) (bool, error) {
	switch c.Kind {
	case lesson.ConditionVariable:
		value, _ := st.Variable(c.Variable)
		return Compare(c.Operator, value, c.Value)
	case lesson.ConditionObjectVisible:
		return st.Visible(c.ObjectID), nil
	case lesson.ConditionObjectHidden:
		return !st.Visible(c.ObjectID), nil
	case lesson.ConditionObjectState:
		return st.ObjectState(c.ObjectID) == c.StateID, nil
	case lesson.ConditionExpression:
		if expr == nil {
			return false, fmt.Errorf("no expression evaluator configured")
		}
		return expr.EvalBool(c.Expression)
	default:
		return false, fmt.Errorf("unknown condition kind: %s", c.Kind)
	}
}

// Compare applies a comparison operator to two values. Numeric operands
// are coerced to float64 where possible; equals/not-equals fall back to
// string comparison for non-numeric operands.
func Compare(op lesson.CompareOp, left, right any) (bool, error) {
	switch op {
	case lesson.OpEquals:
		return equal(left, right), nil
	case lesson.OpNotEquals:
		return !equal(left, right), nil
	case lesson.OpGT, lesson.OpGTE, lesson.OpLT, lesson.OpLTE:
		l, lok := toFloat(left)
		r, rok := toFloat(right)
		if !lok || !rok {
			return false, fmt.Errorf("operator %s requires numeric operands, got %T and %T", op, left, right)
		}
		switch op {
		case lesson.OpGT:
			return l > r, nil
		case lesson.OpGTE:
			return l >= r, nil
		case lesson.OpLT:
			return l < r, nil
		default:
			return l <= r, nil
		}
	case lesson.OpContains:
		return contains(left, right), nil
	case lesson.OpChanged:
		// Only meaningful on variable-change events, where it is
		// unconditionally true.
		return true, nil
	default:
		return false, fmt.Errorf("unknown comparison operator: %s", op)
	}
}

func equal(left, right any) bool {
	if l, lok := toFloat(left); lok {
		if r, rok := toFloat(right); rok {
			return l == r
		}
	}
	if l, lok := left.(bool); lok {
		if r, rok := right.(bool); rok {
			return l == r
		}
	}
	return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right)
}

func contains(left, right any) bool {
	switch l := left.(type) {
	case string:
		return strings.Contains(l, fmt.Sprintf("%v", right))
	case []any:
		for _, item := range l {
			if equal(item, right) {
				return true
			}
		}
		return false
	case []string:
		needle := fmt.Sprintf("%v", right)
		for _, item := range l {
			if item == needle {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}
