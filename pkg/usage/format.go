package usage

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"
)

// ErrFormat is returned when a message template cannot be rendered.
var ErrFormat = errors.New("usage: bad message format")

// render substitutes {name} and {<key>} in format. The value placeholder may
// carry a precision and type such as {cpu_usage:.2f}.
//
// Unsupported: "{{" and "}}" escapes (a lone "}" is literal text), width,
// fill, alignment and sign in specs ({cpu_usage:6.2f}, {name:>8}), and any
// spec on {name}. These return ErrFormat.
func render(format, name, key string, value float64) (string, error) {
	tpl, err := fasttemplate.NewTemplate(format, "{", "}")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return tpl.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		field, spec, _ := strings.Cut(tag, ":")
		switch field {
		case "name":
			if spec != "" {
				return 0, fmt.Errorf("%w: spec %q not allowed on {name}", ErrFormat, spec)
			}
			return io.WriteString(w, name)
		case key:
			s, err := formatFloat(value, spec)
			if err != nil {
				return 0, err
			}
			return io.WriteString(w, s)
		default:
			return 0, fmt.Errorf("%w: unknown placeholder {%s}", ErrFormat, tag)
		}
	})
}

// formatFloat understands an optional precision and one of f, F, e, E, g, G
// or %. An empty spec renders the shortest round-trip form, always with a
// decimal point or exponent ("0.0", "12.5", "1e-05").
func formatFloat(v float64, spec string) (string, error) {
	if spec == "" {
		return shortFloat(v), nil
	}

	verb := spec[len(spec)-1]
	precSpec := spec
	typed := strings.IndexByte("fFeEgG%", verb) >= 0
	if typed {
		precSpec = spec[:len(spec)-1]
	}

	prec := 6
	if precSpec != "" {
		digits, ok := strings.CutPrefix(precSpec, ".")
		n, err := strconv.Atoi(digits)
		if !ok || err != nil || n < 0 {
			return "", fmt.Errorf("%w: unsupported spec %q", ErrFormat, spec)
		}
		prec = n
	}
	if !typed {
		return untypedFloat(v, prec), nil
	}

	switch verb {
	case '%':
		return strconv.FormatFloat(v*100, 'f', prec, 64) + "%", nil
	case 'F':
		return strings.ToUpper(strconv.FormatFloat(v, 'f', prec, 64)), nil
	default:
		return strconv.FormatFloat(v, verb, prec, 64), nil
	}
}

func shortFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// untypedFloat is a precision without a type, as in {cpu_usage:.3}: like g,
// but fixed notation keeps at least one decimal and scientific notation is
// used once the exponent reaches prec-1.
func untypedFloat(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return shortFloat(v)
	}
	if prec == 0 {
		prec = 1
	}
	sci := strconv.FormatFloat(v, 'e', prec-1, 64)
	mant, expStr, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expStr)

	if exp < -4 || exp >= prec-1 {
		if strings.Contains(mant, ".") {
			mant = strings.TrimRight(strings.TrimRight(mant, "0"), ".")
		}
		return mant + "e" + expStr
	}
	fixed := strconv.FormatFloat(v, 'f', prec-1-exp, 64)
	if strings.Contains(fixed, ".") {
		fixed = strings.TrimRight(fixed, "0")
		if strings.HasSuffix(fixed, ".") {
			fixed += "0"
		}
	} else {
		fixed += ".0"
	}
	return fixed
}
