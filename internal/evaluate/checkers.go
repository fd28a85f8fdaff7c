package evaluate

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"

	"github.com/podiumlabs/podium/internal/models"
	"github.com/podiumlabs/podium/internal/pyexec"
)

// Checker decides whether an extracted answer is correct for one
// example. Implementations must be safe for concurrent use.
type Checker interface {
	Name() string
	Check(ctx context.Context, example models.Example, answer string) (bool, error)
}

// ErrUnsupportedTask marks tasks that cannot be scored automatically.
type ErrUnsupportedTask struct {
	Task   string
	Reason string
}

func (e *ErrUnsupportedTask) Error() string {
	return fmt.Sprintf("task %q cannot be scored: %s", e.Task, e.Reason)
}

// NewChecker returns the checker for a task name. The runner is only
// needed for tasks that execute code to verify answers (P3).
func NewChecker(task string, runner pyexec.Runner) (Checker, error) {
	switch {
	case strings.Contains(task, "GameOf24"):
		return &gameOf24Checker{}, nil
	case strings.Contains(task, "word_sorting"), strings.Contains(task, "multistep_arithmetic_two"):
		return &exactMatchChecker{task: task}, nil
	case strings.Contains(task, "CheckmateInOne"):
		return &checkmateChecker{}, nil
	case strings.Contains(task, "geometric_shapes"), strings.Contains(task, "ruin_names"):
		return &multipleChoiceChecker{task: task}, nil
	case strings.Contains(task, "MGSM"), task == "test":
		return &softMatchChecker{task: task}, nil
	case strings.Contains(task, "P3"):
		if runner == nil {
			return nil, fmt.Errorf("task %q requires a code runner", task)
		}
		return &p3Checker{runner: runner}, nil
	case strings.Contains(task, "Sonnets"):
		return nil, &ErrUnsupportedTask{Task: task, Reason: "rhyme-scheme scoring needs a pronunciation dictionary"}
	default:
		return nil, fmt.Errorf("no checker for task %q", task)
	}
}

// gameOf24Checker verifies a Game of 24 expression: it must evaluate to
// 24 and use exactly the four input numbers.
type gameOf24Checker struct{}

func (c *gameOf24Checker) Name() string { return "GameOf24" }

// digitsRE matches integer or decimal literals.
var digitsRE = regexp.MustCompile(`\d+(\.\d+)?`)

// exprCharsetRE is the only character set a cleaned expression may use.
var exprCharsetRE = regexp.MustCompile(`^[0-9+\-*/(). ]+$`)

func (c *gameOf24Checker) Check(ctx context.Context, example models.Example, answer string) (bool, error) {
	expr := cleanArithmeticTail(strings.ToLower(answer))
	if expr == "" || !exprCharsetRE.MatchString(expr) {
		return false, nil
	}

	value, err := evalArithmetic(expr)
	if err != nil {
		return false, nil // unparseable expression is wrong, not an error
	}
	if math.Abs(value-24) >= 1e-3 {
		return false, nil
	}

	// The expression must use exactly the input numbers, each once.
	inputDigits := strings.Fields(example.Input)
	outputDigits := digitsRE.FindAllString(expr, -1)
	sort.Strings(inputDigits)
	sort.Strings(outputDigits)

	if len(inputDigits) != len(outputDigits) {
		return false, nil
	}
	for i := range inputDigits {
		if inputDigits[i] != outputDigits[i] {
			return false, nil
		}
	}
	return true, nil
}

// evalArithmetic evaluates an arithmetic expression with yaegi. Integer
// literals are rewritten as floats first so division behaves like
// calculator division rather than Go integer division.
func evalArithmetic(expr string) (float64, error) {
	floated := digitsRE.ReplaceAllStringFunc(expr, func(lit string) string {
		if strings.Contains(lit, ".") {
			return lit
		}
		return lit + ".0"
	})

	i := interp.New(interp.Options{})
	v, err := i.Eval(floated)
	if err != nil {
		return 0, fmt.Errorf("evaluating %q: %w", expr, err)
	}
	f, ok := v.Interface().(float64)
	if !ok {
		return 0, fmt.Errorf("expression %q did not evaluate to a number", expr)
	}
	return f, nil
}

// exactMatchChecker compares the normalized answer to the target.
type exactMatchChecker struct {
	task string
}

func (c *exactMatchChecker) Name() string { return c.task }

func (c *exactMatchChecker) Check(ctx context.Context, example models.Example, answer string) (bool, error) {
	got := normalizeExact(strings.ToLower(answer))
	return got == strings.ToLower(example.Target), nil
}

// softMatchChecker accepts any answer containing the target.
type softMatchChecker struct {
	task string
}

func (c *softMatchChecker) Name() string { return c.task }

func (c *softMatchChecker) Check(ctx context.Context, example models.Example, answer string) (bool, error) {
	got := removePunctuation(strings.ToLower(answer))
	return strings.Contains(got, strings.ToLower(example.Target)), nil
}

// multipleChoiceChecker requires the answer to start with the target
// option label.
type multipleChoiceChecker struct {
	task string
}

func (c *multipleChoiceChecker) Name() string { return c.task }

func (c *multipleChoiceChecker) Check(ctx context.Context, example models.Example, answer string) (bool, error) {
	return strings.HasPrefix(strings.ToLower(answer), strings.ToLower(example.Target)), nil
}

// checkmateChecker matches the target move, ignoring any continuation
// the model appended after the next move number.
type checkmateChecker struct{}

func (c *checkmateChecker) Name() string { return "CheckmateInOne" }

func (c *checkmateChecker) Check(ctx context.Context, example models.Example, answer string) (bool, error) {
	answer = strings.ToLower(answer)
	target := strings.ToLower(example.Target)

	nextMove, ok := nextMoveNumber(example.Input)
	if !ok {
		return strings.Contains(answer, target), nil
	}

	if !strings.Contains(answer, nextMove) {
		return strings.Contains(answer, target), nil
	}
	// Only the text before the next move number counts.
	prefix := strings.TrimSpace(strings.SplitN(answer, nextMove, 2)[0])
	return strings.Contains(prefix, target), nil
}

// nextMoveNumber derives the number of the move after the last one in a
// SAN move list like "1. e4 e5 2. Qh5 Nc6 3.".
func nextMoveNumber(input string) (string, bool) {
	parts := strings.Split(input, ".")
	if len(parts) < 2 {
		return "", false
	}
	fields := strings.Fields(parts[len(parts)-2])
	if len(fields) == 0 {
		return "", false
	}
	lastIdx := fields[len(fields)-1]
	n := 0
	if _, err := fmt.Sscanf(lastIdx, "%d", &n); err != nil {
		return "", false
	}
	return fmt.Sprintf("%d", n+1), true
}

// p3Checker verifies a Python programming puzzle answer by assembling
// the sat/solution program and executing it.
type p3Checker struct {
	runner pyexec.Runner
}

func (c *p3Checker) Name() string { return "P3" }

func (c *p3Checker) Check(ctx context.Context, example models.Example, answer string) (bool, error) {
	if strings.Contains(answer, "```python") {
		answer = strings.TrimSpace(last(strings.Split(answer, "```python")))
		answer = strings.TrimSpace(strings.SplitN(answer, "```", 2)[0])
	}

	var code string
	if strings.Contains(answer, "def sat") {
		if !strings.Contains(answer, "from typing") {
			answer = "from typing import *\n" + answer
		}
		code = answer + "\nanswer = solution()\nprint(sat(answer))"
	} else {
		code = "from typing import *\n" + example.Input + "\n" + answer + "\nanswer = solution()\nprint(sat(answer))"
	}
	code = strings.ReplaceAll(code, "List[", "list[")

	res, err := c.runner.Run(ctx, code)
	if err != nil {
		return false, nil // broken environment scores as incorrect
	}
	return strings.Contains(res.Stdout, "True"), nil
}

func last(parts []string) string {
	return parts[len(parts)-1]
}
