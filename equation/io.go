package equation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Text form of an equation, one record per equation:
//
//	equation poly
//	time_offset 0
//	degree 1
//	coefficients 1000 10 2000 -10 -11000 5
//	end
//
//	equation rpn
//	time_offset 0
//	x t 2 * 100 / 99 +
//	y t .8 * 1000 -
//	z t .5 * 2000 +
//	end
//
// Blank lines and lines starting with # are ignored. Numbers are written with the shortest representation that
// parses back to the same float64, so a written equation evaluates identically after it is read.
const (
	keyEquation     = "equation"
	keyTimeOffset   = "time_offset"
	keyDegree       = "degree"
	keyCoefficients = "coefficients"
	keyEnd          = "end"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Encoder writes equations in text form.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one equation record.
func (enc *Encoder) Encode(eq Equation) error {
	cfg, err := ConfigFromEquation(eq)
	if err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("%s %s", keyEquation, cfg.Type),
		fmt.Sprintf("%s %s", keyTimeOffset, formatFloat(cfg.TimeOffset)),
	}
	switch cfg.Type {
	case PolyEquationType:
		lines = append(lines,
			fmt.Sprintf("%s %d", keyDegree, cfg.Degree),
			fmt.Sprintf("%s %s", keyCoefficients, strings.Join(lo.Map(cfg.Coefficients, func(c float64, _ int) string {
				return formatFloat(c)
			}), " ")),
		)
	case RPNEquationType:
		lines = append(lines, "x "+cfg.X, "y "+cfg.Y, "z "+cfg.Z)
	}
	lines = append(lines, keyEnd)
	_, err = io.WriteString(enc.w, strings.Join(lines, "\n")+"\n")
	return errors.Wrap(err, "error writing equation")
}

// Decoder reads equations in text form.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: bufio.NewScanner(r)}
}

// next returns the next meaningful line. It returns io.EOF at the end of the input.
func (dec *Decoder) next() (string, error) {
	for dec.scanner.Scan() {
		dec.line++
		text := strings.TrimSpace(dec.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return text, nil
	}
	if err := dec.scanner.Err(); err != nil {
		return "", errors.Wrap(err, "error reading equation")
	}
	return "", io.EOF
}

func (dec *Decoder) errorf(format string, args ...interface{}) error {
	return errors.Errorf("line %d: %s", dec.line, fmt.Sprintf(format, args...))
}

// Decode reads the next equation record. It returns io.EOF when no records remain.
func (dec *Decoder) Decode() (Equation, error) {
	header, err := dec.next()
	if err != nil {
		return nil, err
	}
	key, value := splitKey(header)
	if key != keyEquation {
		return nil, dec.errorf("expected %q, got %q", keyEquation, key)
	}
	cfg := &Config{Type: EquationType(value)}

	for {
		text, err := dec.next()
		if errors.Is(err, io.EOF) {
			return nil, dec.errorf("equation record not terminated by %q", keyEnd)
		}
		if err != nil {
			return nil, err
		}
		key, value := splitKey(text)
		switch key {
		case keyEnd:
			if err := cfg.Validate(fmt.Sprintf("line %d", dec.line)); err != nil {
				return nil, err
			}
			return NewEquation(cfg)
		case keyTimeOffset:
			if cfg.TimeOffset, err = strconv.ParseFloat(value, 64); err != nil {
				return nil, dec.errorf("bad %s %q", keyTimeOffset, value)
			}
		case keyDegree:
			if cfg.Degree, err = strconv.Atoi(value); err != nil {
				return nil, dec.errorf("bad %s %q", keyDegree, value)
			}
		case keyCoefficients:
			for _, field := range strings.Fields(value) {
				c, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, dec.errorf("bad coefficient %q", field)
				}
				cfg.Coefficients = append(cfg.Coefficients, c)
			}
		case "x":
			cfg.X = value
		case "y":
			cfg.Y = value
		case "z":
			cfg.Z = value
		default:
			return nil, dec.errorf("unknown key %q", key)
		}
	}
}

func splitKey(text string) (string, string) {
	key, value, _ := strings.Cut(text, " ")
	return key, strings.TrimSpace(value)
}

// WriteEquation writes a single equation to w.
func WriteEquation(w io.Writer, eq Equation) error {
	return NewEncoder(w).Encode(eq)
}

// ReadEquation reads a single equation from r.
func ReadEquation(r io.Reader) (Equation, error) {
	eq, err := NewDecoder(r).Decode()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no equation found")
	}
	return eq, err
}

// WriteAdjustment writes the position and pose equations of one image, in that order.
func WriteAdjustment(w io.Writer, position, pose Equation) error {
	enc := NewEncoder(w)
	if _, err := io.WriteString(w, "# position\n"); err != nil {
		return errors.Wrap(err, "error writing adjustment")
	}
	if err := enc.Encode(position); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "# pose\n"); err != nil {
		return errors.Wrap(err, "error writing adjustment")
	}
	return enc.Encode(pose)
}

// ReadAdjustment reads the position and pose equations written by WriteAdjustment.
func ReadAdjustment(r io.Reader) (position, pose Equation, err error) {
	dec := NewDecoder(r)
	if position, err = dec.Decode(); err != nil {
		return nil, nil, errors.Wrap(err, "error reading position equation")
	}
	if pose, err = dec.Decode(); err != nil {
		return nil, nil, errors.Wrap(err, "error reading pose equation")
	}
	if _, err := dec.Decode(); !errors.Is(err, io.EOF) {
		return nil, nil, errors.New("unexpected content after pose equation")
	}
	return position, pose, nil
}

// WriteAdjustmentFile writes an adjustment to the named file, replacing it.
func WriteAdjustmentFile(path string, position, pose Equation) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "error creating adjustment file")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return WriteAdjustment(f, position, pose)
}

// ReadAdjustmentFile reads an adjustment from the named file.
func ReadAdjustmentFile(path string) (position, pose Equation, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error opening adjustment file")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return ReadAdjustment(f)
}
