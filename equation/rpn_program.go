package equation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/linescan/utils"
)

// maxStackDepth bounds the evaluation stack of a single axis expression.
const maxStackDepth = 64

type opcode int

const (
	opPush opcode = iota
	opTime
	opAdd
	opSub
	opMul
	opDiv
	opPow
	opNeg
	opAbs
	opSqrt
	opSin
	opCos
	opTan
	opAsin
	opAcos
	opAtan
	opExp
	opLog
)

var binaryOps = map[string]opcode{
	"+": opAdd,
	"-": opSub,
	"*": opMul,
	"/": opDiv,
	"^": opPow,
}

var unaryOps = map[string]opcode{
	"neg":  opNeg,
	"abs":  opAbs,
	"sqrt": opSqrt,
	"sin":  opSin,
	"cos":  opCos,
	"tan":  opTan,
	"asin": opAsin,
	"acos": opAcos,
	"atan": opAtan,
	"exp":  opExp,
	"log":  opLog,
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// timeSymbol is the only free variable an expression may reference.
const timeSymbol = "t"

type instruction struct {
	op    opcode
	value float64
}

// arity is the number of operands an instruction pops.
func (in instruction) arity() int {
	switch in.op {
	case opPush, opTime:
		return 0
	case opAdd, opSub, opMul, opDiv, opPow:
		return 2
	default:
		return 1
	}
}

// program is one compiled axis expression.
type program struct {
	axis   int
	source string
	code   []instruction
}

// compile tokenizes expr on whitespace and checks that it leaves exactly one value on the stack.
func compile(axis int, expr string) (*program, error) {
	tokens := strings.Fields(expr)
	if len(tokens) == 0 {
		return nil, NewExpressionParseError(axis, "empty expression")
	}

	p := &program{axis: axis, source: strings.Join(tokens, " "), code: make([]instruction, 0, len(tokens))}
	depth := 0
	for i, tok := range tokens {
		in, err := parseToken(tok)
		if err != nil {
			return nil, NewExpressionParseError(axis, fmt.Sprintf("token %d: %s", i+1, err))
		}
		if depth < in.arity() {
			return nil, NewExpressionParseError(axis,
				fmt.Sprintf("token %d (%q) needs %d operands, stack has %d", i+1, tok, in.arity(), depth))
		}
		depth = depth - in.arity() + 1
		if depth > maxStackDepth {
			return nil, NewExpressionParseError(axis, fmt.Sprintf("stack deeper than %d", maxStackDepth))
		}
		p.code = append(p.code, in)
	}
	if depth != 1 {
		return nil, NewExpressionParseError(axis, fmt.Sprintf("expression leaves %d values on the stack, want 1", depth))
	}
	return p, nil
}

func parseToken(tok string) (instruction, error) {
	if op, ok := binaryOps[tok]; ok {
		return instruction{op: op}, nil
	}
	if op, ok := unaryOps[tok]; ok {
		return instruction{op: op}, nil
	}
	if tok == timeSymbol {
		return instruction{op: opTime}, nil
	}
	if c, ok := constants[tok]; ok {
		return instruction{op: opPush, value: c}, nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return instruction{}, errors.Errorf("unknown symbol %q", tok)
	}
	if !utils.IsFinite(v) {
		return instruction{}, errors.Errorf("literal %q is not finite", tok)
	}
	return instruction{op: opPush, value: v}, nil
}

// eval runs the program with t bound to the time symbol. The stack lives on the goroutine's own frame, so
// concurrent evaluations of one program do not interfere.
func (p *program) eval(t float64) (float64, error) {
	var stack [maxStackDepth]float64
	sp := 0
	for _, in := range p.code {
		if sp < in.arity() {
			return 0, NewEvaluationError(p.axis, "stack underflow")
		}
		switch in.op {
		case opPush, opTime:
			if sp == maxStackDepth {
				return 0, NewEvaluationError(p.axis, "stack overflow")
			}
			if in.op == opTime {
				stack[sp] = t
			} else {
				stack[sp] = in.value
			}
			sp++
		case opAdd, opSub, opMul, opDiv, opPow:
			a, b := stack[sp-2], stack[sp-1]
			sp--
			switch in.op {
			case opAdd:
				stack[sp-1] = a + b
			case opSub:
				stack[sp-1] = a - b
			case opMul:
				stack[sp-1] = a * b
			case opDiv:
				if b == 0 {
					return 0, NewEvaluationError(p.axis, "division by zero")
				}
				stack[sp-1] = a / b
			default:
				stack[sp-1] = math.Pow(a, b)
			}
		default:
			stack[sp-1] = applyUnary(in.op, stack[sp-1])
		}
	}
	if sp != 1 {
		return 0, NewEvaluationError(p.axis, fmt.Sprintf("expression left %d values on the stack", sp))
	}
	if !utils.IsFinite(stack[0]) {
		return 0, NewEvaluationError(p.axis, fmt.Sprintf("non-finite result at t=%g", t))
	}
	return stack[0], nil
}

func applyUnary(op opcode, v float64) float64 {
	switch op {
	case opNeg:
		return -v
	case opAbs:
		return math.Abs(v)
	case opSqrt:
		return math.Sqrt(v)
	case opSin:
		return math.Sin(v)
	case opCos:
		return math.Cos(v)
	case opTan:
		return math.Tan(v)
	case opAsin:
		return math.Asin(v)
	case opAcos:
		return math.Acos(v)
	case opAtan:
		return math.Atan(v)
	case opExp:
		return math.Exp(v)
	case opLog:
		return math.Log(v)
	default:
		return math.NaN()
	}
}
