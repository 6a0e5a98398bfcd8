package imfit

import(
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

/* Example result text, as written by imfit --save-params ...

# Best-fit parameters
#   Reduced Chi^2 = 1.0213
X0		50.0000 # +/- 0.1000
Y0		60.0000 # +/- 0.2000
FUNCTION Sersic
PA		10.0000 # +/- 1.0000
ell		0.3000 # +/- 0.0100
n		1.0000 # fixed
...

*/

// ErrMarker separates a value from its uncertainty.
const ErrMarker = "+/-"

type lineKind int

const(
	lineBlank lineKind = iota
	lineComment
	lineFunction
	lineX0
	lineY0
	lineParam
)

// A resultLine is one tokenized line of result text.
type resultLine struct {
	Num       int      // 1-based, for error messages
	Kind      lineKind
	Name      string   // param name, or function name for lineFunction
	Value     float64
	Err      *float64
}

func (rl resultLine)String() string { return fmt.Sprintf("line %d (%s)", rl.Num, rl.Name) }

// scanResultLines tokenizes the whole text, and digs out the reduced
// fit statistic from the comments.
func scanResultLines(r io.Reader) ([]resultLine, *float64, error) {
	lines := []resultLine{}
	var chisq *float64
	sawChisq := false

	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		text := scanner.Text()
		fields := strings.Fields(text)

		switch {
		case len(fields) == 0:
			lines = append(lines, resultLine{Num: num, Kind: lineBlank})

		case strings.HasPrefix(fields[0], "#"):
			lines = append(lines, resultLine{Num: num, Kind: lineComment})
			if sawChisq || !hasToken(fields, "Reduced") {
				continue
			}
			v, err := parseReducedChisq(fields)
			if err != nil {
				return nil, nil, errors.Wrapf(ErrMalformedResult, "line %d: %v", num, err)
			}
			chisq, sawChisq = v, true

		case fields[0] == "FUNCTION":
			if len(fields) < 2 {
				return nil, nil, errors.Wrapf(ErrMalformedResult, "line %d: FUNCTION without a name", num)
			}
			lines = append(lines, resultLine{Num: num, Kind: lineFunction, Name: fields[1]})

		default:
			rl, err := parseMeasurement(fields)
			if err != nil {
				return nil, nil, errors.Wrapf(ErrMalformedResult, "line %d: %v", num, err)
			}
			rl.Num = num
			switch {
			case strings.HasPrefix(fields[0], "X0"): rl.Kind = lineX0
			case strings.HasPrefix(fields[0], "Y0"): rl.Kind = lineY0
			default:                                 rl.Kind = lineParam
			}
			if rl.Kind != lineParam {
				if err := checkCenterShape(fields); err != nil {
					return nil, nil, errors.Wrapf(ErrMalformedResult, "line %d: %v", num, err)
				}
			}
			lines = append(lines, rl)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read results: %v", err)
	}
	if !sawChisq {
		return nil, nil, errors.Wrapf(ErrMalformedResult, "no 'Reduced' fit statistic comment")
	}
	return lines, chisq, nil
}

// parseReducedChisq reads the last token of the comment: "none", or a number.
func parseReducedChisq(fields []string) (*float64, error) {
	last := fields[len(fields)-1]
	if last == "none" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return nil, fmt.Errorf("reduced fit statistic %q: %v", last, err)
	}
	return &v, nil
}

// parseMeasurement reads "<name> <value> ...". A free param carries an
// uncertainty: either the token after "+/-" (which must be the last
// token), or the 5th token of a 5-token line. Fixed params have none.
func parseMeasurement(fields []string) (resultLine, error) {
	rl := resultLine{}
	if len(fields) < 2 {
		return rl, fmt.Errorf("%q: want at least a name and a value", strings.Join(fields, " "))
	}

	rl.Name = fields[0]
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return rl, fmt.Errorf("%s value %q: %v", rl.Name, fields[1], err)
	}
	rl.Value = v

	errToken := ""
	if k := indexOf(fields, ErrMarker); k >= 0 {
		if k != len(fields)-2 {
			return rl, fmt.Errorf("%s: %d tokens, want exactly one after %q", rl.Name, len(fields)-k-1, ErrMarker)
		}
		errToken = fields[k+1]
	} else if len(fields) == 5 {
		errToken = fields[4]
	}

	if errToken != "" {
		e, err := strconv.ParseFloat(errToken, 64)
		if err != nil {
			return rl, fmt.Errorf("%s uncertainty %q: %v", rl.Name, errToken, err)
		}
		rl.Err = &e
	}
	return rl, nil
}

// checkCenterShape rejects X0/Y0 lines that are neither free (with an
// uncertainty) nor fixed: "X0 50 # +/- 0.1", "X0 50 # lo,hi 0.1" and
// "X0 50 # fixed" are all fine, "X0 50 # lo,hi 0.1 junk" is not.
func checkCenterShape(fields []string) error {
	if hasToken(fields, ErrMarker) || len(fields) == 5 {
		return nil
	}
	if len(fields) <= 4 && fields[len(fields)-1] == FixedKeyword {
		return nil
	}
	return fmt.Errorf("%s: %d tokens, want a '%s' uncertainty, 5 tokens, or '%s'", fields[0], len(fields), ErrMarker, FixedKeyword)
}

// The states of the walk in ParseTree.
type parseState int

const(
	expectObject    parseState = iota // nothing open; need X0
	expectY0                          // X0 seen
	expectFunction                    // X0, Y0 seen
	inComponent                       // params attach to the newest component
)

func (ps parseState)String() string {
	return []string{"expect-object", "expect-Y0", "expect-FUNCTION", "in-component"}[ps]
}

// ParseTree rebuilds the object/component structure of a result text.
// An X0, Y0, FUNCTION run opens a new object and its first component;
// a FUNCTION on its own adds a component to the newest object; any
// other line is a param of the newest component.
func ParseTree(r io.Reader) (*ResultTree, error) {
	lines, chisq, err := scanResultLines(r)
	if err != nil {
		return nil, err
	}

	rt := NewResultTree()
	rt.ReducedChiSq = chisq

	state := expectObject
	var x0, y0 resultLine
	obj := -1

	for _, rl := range lines {
		if rl.Kind == lineBlank || rl.Kind == lineComment {
			continue
		}

		switch state {
		case expectObject, inComponent:
			switch rl.Kind {
			case lineX0:
				x0, state = rl, expectY0
			case lineFunction:
				if state == expectObject {
					return nil, errors.Wrapf(ErrMalformedResult, "%s: FUNCTION before any X0/Y0", rl)
				}
				if err := rt.AddFunction(obj, rl.Name); err != nil {
					return nil, errors.Wrapf(err, "%s", rl)
				}
			case lineParam:
				if state == expectObject {
					return nil, errors.Wrapf(ErrMalformedResult, "%s: param before any FUNCTION", rl)
				}
				if err := rt.AddParameter(obj, LatestComponent, rl.Name, rl.Value, rl.Err); err != nil {
					return nil, errors.Wrapf(err, "%s", rl)
				}
			default:
				return nil, errors.Wrapf(ErrMalformedResult, "%s: unexpected in state %s", rl, state)
			}

		case expectY0:
			if rl.Kind != lineY0 {
				return nil, errors.Wrapf(ErrMalformedResult, "%s: want Y0 after X0 on line %d", rl, x0.Num)
			}
			y0, state = rl, expectFunction

		case expectFunction:
			if rl.Kind != lineFunction {
				return nil, errors.Wrapf(ErrMalformedResult, "%s: want FUNCTION after Y0 on line %d", rl, y0.Num)
			}
			obj = rt.AddObject(x0.Value, x0.Err, y0.Value, y0.Err)
			if err := rt.AddFunction(obj, rl.Name); err != nil {
				return nil, errors.Wrapf(err, "%s", rl)
			}
			state = inComponent
		}
	}

	if state == expectY0 || state == expectFunction {
		return nil, errors.Wrapf(ErrMalformedResult, "text ends in state %s", state)
	}
	return rt, nil
}

// A SingleResult is the result of fitting a single component.
type SingleResult struct {
	*ComponentResult
	ReducedChiSq *float64
}

// ParseSingle reads the result of a single-component fit: the param
// lines (X0 and Y0 included) are mapped in order onto X0, Y0 and the
// form's params. Names in the text are not checked.
func ParseSingle(r io.Reader, function string) (*SingleResult, error) {
	ff, err := LookupFunction(function)
	if err != nil {
		return nil, err
	}

	lines, chisq, err := scanResultLines(r)
	if err != nil {
		return nil, err
	}

	names := append([]string{"X0", "Y0"}, ff.ParamNames...)
	cr := newComponentResult(function)
	i := 0
	for _, rl := range lines {
		if i == len(names) {
			break
		}
		switch rl.Kind {
		case lineX0, lineY0, lineParam:
			cr.set(names[i], rl.Value, rl.Err)
			i++
		}
	}

	if i < len(names) {
		return nil, errors.Wrapf(ErrMalformedResult, "%s: found %d param lines, want %d", function, i, len(names))
	}
	return &SingleResult{ComponentResult: cr, ReducedChiSq: chisq}, nil
}

// ModelResults are the results of fitting a Model; Components[i] is
// the result for the model's i'th component.
type ModelResults struct {
	Components   []*ComponentResult
	ReducedChiSq *float64
}

// ParseModelResults parses the result text from fitting m, and checks
// that it has the same shape: same number of objects and components,
// same functions, same params in the same order.
func ParseModelResults(r io.Reader, m *Model) (*ModelResults, error) {
	rt, err := ParseTree(r)
	if err != nil {
		return nil, err
	}

	if rt.NumObjects() != m.NumCenters() {
		return nil, errors.Wrapf(ErrMalformedResult, "results have %d objects, model has %d centers", rt.NumObjects(), m.NumCenters())
	}

	comps := rt.Components()
	if len(comps) != m.Len() {
		return nil, errors.Wrapf(ErrMalformedResult, "results have %d components, model has %d", len(comps), m.Len())
	}

	for i, c := range m.components {
		cr := comps[i]
		if cr.Function != c.Name() {
			return nil, errors.Wrapf(ErrMalformedResult, "%s: result is %s, model is %s", CompKey(i), cr.Function, c.Name())
		}
		if got, want := cr.ParamNames(), c.ParamNames(); strings.Join(got, " ") != strings.Join(want, " ") {
			return nil, errors.Wrapf(ErrMalformedResult, "%s (%s): params %v, want %v", CompKey(i), c.Name(), got, want)
		}
	}

	return &ModelResults{Components: comps, ReducedChiSq: rt.ReducedChiSq}, nil
}

func (mr *ModelResults)Get(i int) (*ComponentResult, error) {
	if i < 0 || i >= len(mr.Components) {
		return nil, errors.Wrapf(ErrNoSuchComponent, "%s (have %d)", CompKey(i), len(mr.Components))
	}
	return mr.Components[i], nil
}

func (mr *ModelResults)String() string {
	str := ""
	for i, cr := range mr.Components {
		x0, _ := cr.Get("X0")
		y0, _ := cr.Get("Y0")
		str += fmt.Sprintf("\nComponent  %d\n", i+1)
		str += "---------------------\n"
		str += fmt.Sprintf("Function   %s\n", cr.Function)
		str += fmt.Sprintf("X0         %v\n", x0)
		str += fmt.Sprintf("Y0         %v\n", y0)
		for _, name := range cr.names {
			str += fmt.Sprintf("%-9s  %.4f\n", name, cr.values[name])
		}
	}
	return str
}

// ParseTreeFile, ParseSingleFile and ParseModelResultsFile read a
// result file written by imfit.
func ParseTreeFile(filename string) (*ResultTree, error) {
	var rt *ResultTree
	err := withFile(filename, func(r io.Reader) (err error) { rt, err = ParseTree(r); return })
	return rt, err
}

func ParseSingleFile(filename, function string) (*SingleResult, error) {
	var sr *SingleResult
	err := withFile(filename, func(r io.Reader) (err error) { sr, err = ParseSingle(r, function); return })
	return sr, err
}

func ParseModelResultsFile(filename string, m *Model) (*ModelResults, error) {
	var mr *ModelResults
	err := withFile(filename, func(r io.Reader) (err error) { mr, err = ParseModelResults(r, m); return })
	return mr, err
}

func withFile(filename string, f func(io.Reader) error) error {
	reader, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open+r '%s': %v", filename, err)
	}
	defer reader.Close()

	if err := f(reader); err != nil {
		return errors.Wrapf(err, "'%s'", filename)
	}
	return nil
}

func hasToken(fields []string, tok string) bool { return indexOf(fields, tok) >= 0 }

func indexOf(fields []string, tok string) int {
	for i, f := range fields {
		if f == tok {
			return i
		}
	}
	return -1
}
