package rule

import (
	"errors"
	"fmt"

	"bidscore/internal/score"

	"github.com/google/cel-go/cel"
)

// Rule labels a bidder result with a flag.
// The When field contains a CEL expression over the bidder's result; the Then
// field is the flag attached when the expression evaluates to true.
// The CEL program is compiled when Init is called.
type Rule struct {
	// When — CEL expression defining the rule trigger condition.
	// Must return a boolean value.
	When string `yaml:"when" json:"when"`
	// Then — flag attached to the bidder result if the condition is true.
	Then string `yaml:"then" json:"then"`
	// program — compiled CEL program used to execute the condition.
	program cel.Program
}

// NewEnv returns the CEL environment flag rules are compiled against.
//
// Variables:
//   - price, deviation, score, benchmark (double)
//   - rank, bidders (int): the bidder's dense rank and the number of bidders
//   - outlier (string): "high", "low" or "" when the price entered the benchmark
func NewEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("price", cel.DoubleType),
		cel.Variable("deviation", cel.DoubleType),
		cel.Variable("score", cel.DoubleType),
		cel.Variable("benchmark", cel.DoubleType),
		cel.Variable("rank", cel.IntType),
		cel.Variable("bidders", cel.IntType),
		cel.Variable("outlier", cel.StringType),
	)
}

// Init compiles the When expression using the provided env environment.
// In case of syntax or semantic errors, or a non-boolean expression, returns
// the corresponding error.
func (r *Rule) Init(env *cel.Env) error {
	if r.Then == "" {
		return errors.New("rule then: flag must be specified")
	}

	ast, iss := env.Parse(r.When)
	if iss.Err() != nil {
		return iss.Err()
	}

	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return iss.Err()
	}

	if !checked.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("rule %q: expression must return bool, got %s", r.When, checked.OutputType())
	}

	var err error
	r.program, err = env.Program(checked)
	if err != nil {
		return err
	}

	return nil
}

// Eval executes the compiled rule on the provided variables.
// It returns the Then flag when the condition is true and "" when it is false.
// Execution errors, such as a missing variable, are returned to the caller.
func (r *Rule) Eval(vars map[string]any) (string, error) {
	result, _, err := r.program.Eval(vars)
	if err != nil {
		return "", err
	}

	if result.Value() != true {
		return "", nil
	}

	return r.Then, nil
}

// Vars converts one bidder result of a calculation into CEL variables.
func Vars(result score.BidderResult, calculation *score.CalculationResult) map[string]any {
	return map[string]any{
		"price":     result.Price,
		"deviation": result.Deviation,
		"score":     result.Score,
		"benchmark": calculation.BenchmarkPrice,
		"rank":      int64(result.Rank),
		"bidders":   int64(len(calculation.Results)),
		"outlier":   result.Outlier,
	}
}
