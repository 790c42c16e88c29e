package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/cubed/pkg/decomp"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites script source for zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     need to be registered as globals.
//  2. ; line comments become // comments.
//  3. kebab-case identifiers become snake_case (initial-dx -> initial_dx),
//     since zygomys reads the hyphen as subtraction.
//
// String literals are copied untouched.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)

	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '"' || c == '`':
			j := skipString(b, i)
			out = append(out, b[i:j]...)
			i = j

		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}

		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2

		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// skipString returns the index just past the string literal starting at i.
// Double-quoted strings honor backslash escapes; backtick strings do not.
func skipString(b []byte, i int) int {
	quote := b[i]
	j := i + 1
	for j < len(b) && b[j] != quote {
		if quote == '"' && b[j] == '\\' && j+1 < len(b) {
			j++
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (:half) and plain strings ("half").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func float(v float64) zygo.Sexp {
	return &zygo.SexpFloat{Val: v}
}

// ---------------------------------------------------------------------------
// Script state
// ---------------------------------------------------------------------------

// script is the per-evaluation state shared by the builtins.
type script struct {
	cfg    decomp.Config
	state  *decomp.State
	frames []decomp.Update
}

func newScript(base decomp.Config) *script {
	return &script{cfg: base}
}

// ensure starts the session from the current config if no (session ...)
// form did so already.
func (sc *script) ensure() (*decomp.State, error) {
	if sc.state != nil {
		return sc.state, nil
	}
	st, err := decomp.NewState(sc.cfg)
	if err != nil {
		return nil, err
	}
	sc.state = st
	return st, nil
}

func (sc *script) session() (*Session, []EvalError, error) {
	st, err := sc.ensure()
	if err != nil {
		return nil, nil, fmt.Errorf("engine: %w", err)
	}
	return &Session{State: st, Frames: sc.frames}, nil, nil
}

func (sc *script) slide(dx float64) (decomp.Update, error) {
	st, err := sc.ensure()
	if err != nil {
		return decomp.Update{}, err
	}
	u, err := st.Update(dx)
	if err != nil {
		return decomp.Update{}, err
	}
	sc.frames = append(sc.frames, u)
	return u, nil
}

// sessionFields maps (session ...) keywords to config fields.
var sessionFields = map[string]func(*decomp.Config) *float64{
	"base_unit":  func(c *decomp.Config) *float64 { return &c.BaseUnit },
	"initial_dx": func(c *decomp.Config) *float64 { return &c.InitialDx },
	"gap":        func(c *decomp.Config) *float64 { return &c.Gap },
	"expansion":  func(c *decomp.Config) *float64 { return &c.Expansion },
	"min_dx":     func(c *decomp.Config) *float64 { return &c.MinDx },
	"max_dx":     func(c *decomp.Config) *float64 { return &c.MaxDx },
	"step":       func(c *decomp.Config) *float64 { return &c.Step },
}

// applySessionArgs overlays keyword arguments on cfg. Keyword names arrive
// either kebab-case or snake_case.
func applySessionArgs(cfg *decomp.Config, args kwArgs) error {
	for name, val := range args.kw {
		key := strings.ReplaceAll(name, "-", "_")
		if field, ok := sessionFields[key]; ok {
			v, err := toFloat64(val)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*field(cfg) = v
			continue
		}

		var target interface{ UnmarshalText([]byte) error }
		switch key {
		case "arrangement":
			target = &cfg.Arrangement
		case "translate":
			target = &cfg.Translate
		case "scale":
			target = &cfg.Scale
		case "bounds":
			target = &cfg.Bounds
		default:
			return fmt.Errorf("unknown keyword :%s", name)
		}
		s, err := toKeywordString(val)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := target.UnmarshalText([]byte(s)); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the session builtins into a zygomys environment.
//
//	(session :base-unit 10 :initial-dx 1.5 :translate :half ...)  configure, once
//	(slide 2.5)            apply dx, returns the scale amount
//	(sweep 0 3 30)         slide through 31 evenly spaced values
//	(dx)                   current dx
//	(volume)               total volume at the current dx
//
// Source code must be preprocessed with preprocessSource() first.
func registerBuiltins(env *zygo.Zlisp, sc *script) {
	env.AddFunction("session", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if sc.state != nil {
			return zygo.SexpNull, fmt.Errorf("session: already started")
		}
		a := parseArgs(args)
		if len(a.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("session: takes only keyword arguments")
		}
		cfg := sc.cfg
		if err := applySessionArgs(&cfg, a); err != nil {
			return zygo.SexpNull, fmt.Errorf("session: %w", err)
		}
		sc.cfg = cfg
		if _, err := sc.ensure(); err != nil {
			return zygo.SexpNull, fmt.Errorf("session: %w", err)
		}
		return float(cfg.InitialDx), nil
	})

	env.AddFunction("slide", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("slide requires exactly 1 argument, got %d", len(args))
		}
		dx, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("slide: %w", err)
		}
		u, err := sc.slide(dx)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("slide: %w", err)
		}
		return float(u.Scale), nil
	})

	env.AddFunction("sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("sweep requires from, to and steps, got %d arguments", len(args))
		}
		var v [3]float64
		for i, arg := range args {
			f, err := toFloat64(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sweep: %w", err)
			}
			v[i] = f
		}
		steps := int(v[2])
		if steps < 1 {
			return zygo.SexpNull, fmt.Errorf("sweep: steps must be at least 1, got %d", steps)
		}
		for i := 0; i <= steps; i++ {
			dx := v[1]
			if i < steps {
				dx = v[0] + (v[1]-v[0])*float64(i)/float64(steps)
			}
			if _, err := sc.slide(dx); err != nil {
				return zygo.SexpNull, fmt.Errorf("sweep: %w", err)
			}
		}
		return float(sc.state.CurrentDx()), nil
	})

	env.AddFunction("dx", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st, err := sc.ensure()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dx: %w", err)
		}
		return float(st.CurrentDx()), nil
	})

	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st, err := sc.ensure()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: %w", err)
		}
		v := decomp.Measure(st.Config(), st.Layout(), st.CurrentDx())
		return float(v.Total()), nil
	})
}
