// Package screen implements the screen-imaging pipeline: the
// settle/verify/redirect/capture workflow that behavior units invoke,
// via image_screen, after driving a terminal session. It is
// configuration-driven, addressed by a four-segment config path
// ["screens", origin_unit_name, current_state, substate], and is the
// one place handlers read and react to screen content instead of
// poking the terminal façade directly.
package screen

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/charles-dyfis-net/isg-state-machine-framework/config"
	"github.com/charles-dyfis-net/isg-state-machine-framework/hsm"
)

// Terminal is the narrow slice of the terminal façade (C5) the
// screen-imaging pipeline depends on. terminal.Session satisfies it.
type Terminal interface {
	ExpectDelay(ctx context.Context, delay, timeout, resolution time.Duration, requireInput int) error
	ExpectLineMatching(ctx context.Context, pattern string, lineno int, timeout time.Duration) error
	ScreenDump(sink io.Writer) error
	GetRegion(r1, c1, r2, c2 int) []string
}

// defaultExpectTimeout and defaultResolution bound and pace the settle
// wait (ExpectDelay); the pipeline has no timeout knob of its own
// beyond verify_* entries' own timeout.
const (
	defaultExpectTimeout = 30 * time.Second
	defaultResolution    = 250 * time.Millisecond
)

// Pipeline groups the collaborators image_screen needs: the terminal
// façade driving the session under image, the config tree describing
// screens.*, the shared captured-data dictionary, and the diagnostic
// dump sink used when General.dump_screen is set.
type Pipeline struct {
	Term     Terminal
	Config   *config.Tree
	Captures *Captures
	DumpSink io.Writer
}

// Image runs the settle → optional dump → verify → redirect → capture
// pipeline against the config path
// ["screens", origin, state, substate]. origin is the name of the
// behavior unit that declared the currently executing primary handler
// (C2); state is the live state name.
func (p *Pipeline) Image(ctx context.Context, origin string, state hsm.StateName, substate string, expectUpdates bool, settleTime *time.Duration) error {
	settle := p.settleDuration(settleTime)

	requireInput := 0
	if expectUpdates {
		requireInput = 1
	}
	if err := p.Term.ExpectDelay(ctx, settle, defaultExpectTimeout, defaultResolution, requireInput); err != nil {
		return err
	}

	if p.Config.GetBoolDefault(config.Path{"General"}, "dump_screen", false) {
		sink := p.DumpSink
		if sink == nil {
			sink = io.Discard
		}
		if err := p.Term.ScreenDump(sink); err != nil {
			return err
		}
	}

	screenPath := config.Path{"screens", origin, state.String(), substate}

	if err := p.verify(ctx, screenPath, settle); err != nil {
		return err
	}

	redirected, err := p.redirect(ctx, origin, state, substate, settle)
	if err != nil {
		return err
	}
	if redirected {
		return nil
	}

	return p.capture(origin, screenPath)
}

func (p *Pipeline) settleDuration(settleTime *time.Duration) time.Duration {
	if settleTime != nil {
		return *settleTime
	}
	seconds := p.Config.GetFloatDefault(config.Path{"General"}, "settle_time", 0.5)
	return time.Duration(seconds * float64(time.Second))
}

func (p *Pipeline) verify(ctx context.Context, screenPath config.Path, settle time.Duration) error {
	items := p.Config.GetItems(screenPath, "verify_", false, nil)
	for _, item := range items {
		list, ok := item.Value.([]any)
		if !ok || (len(list) != 2 && len(list) != 3) {
			return &MalformedEntryError{Path: pathString(screenPath), Name: item.Name}
		}
		lineno, err := toInt(list[0])
		if err != nil {
			return err
		}
		pattern, err := toString(list[1])
		if err != nil {
			return err
		}
		timeout := settle
		if len(list) == 3 {
			seconds, err := toFloat(list[2])
			if err != nil {
				return err
			}
			timeout = time.Duration(seconds * float64(time.Second))
		}
		if err := p.Term.ExpectLineMatching(ctx, pattern, lineno, timeout); err != nil {
			return err
		}
	}
	return nil
}

// redirect returns true if a redirect_* entry fired and recursed (its
// result has already been returned to the caller via err).
func (p *Pipeline) redirect(ctx context.Context, origin string, state hsm.StateName, substate string, settle time.Duration) (bool, error) {
	screenPath := config.Path{"screens", origin, state.String(), substate}
	items := p.Config.GetItems(screenPath, "redirect_", true, config.NumericSuffixOrder)
	for _, item := range items {
		list, ok := item.Value.([]any)
		if !ok || len(list) < 1 {
			return false, &MalformedEntryError{Path: pathString(screenPath), Name: "redirect_" + item.Name}
		}
		kind, err := toString(list[0])
		if err != nil {
			return false, err
		}
		switch kind {
		case "regex":
			if len(list) != 6 {
				return false, &MalformedEntryError{Path: pathString(screenPath), Name: "redirect_" + item.Name}
			}
			lineno, err := toInt(list[1])
			if err != nil {
				return false, err
			}
			startcol, err := toInt(list[2])
			if err != nil {
				return false, err
			}
			length, err := toInt(list[3])
			if err != nil {
				return false, err
			}
			reText, err := toString(list[4])
			if err != nil {
				return false, err
			}
			target, err := toString(list[5])
			if err != nil {
				return false, err
			}
			re, err := regexp.Compile(`\A(?:` + reText + `)`)
			if err != nil {
				return false, err
			}
			rows := p.Term.GetRegion(lineno, startcol, lineno, startcol+length)
			if len(rows) > 0 && re.MatchString(rows[0]) {
				return true, p.Image(ctx, origin, state, target, false, &settle)
			}
		case "always":
			if len(list) != 2 {
				return false, &MalformedEntryError{Path: pathString(screenPath), Name: "redirect_" + item.Name}
			}
			target, err := toString(list[1])
			if err != nil {
				return false, err
			}
			return true, p.Image(ctx, origin, state, target, false, &settle)
		case "error":
			return true, &RedirectedToError{Args: list[1:]}
		default:
			return false, &UnknownRedirectKindError{Kind: kind}
		}
	}
	return false, nil
}

func (p *Pipeline) capture(origin string, screenPath config.Path) error {
	path := append(config.Path{}, screenPath...)
	for {
		items := p.Config.GetItems(path, "data__", true, nil)
		for _, item := range items {
			list, ok := item.Value.([]any)
			if !ok || len(list) < 1 {
				return &MalformedEntryError{Path: pathString(path), Name: "data__" + item.Name}
			}
			kind, err := toString(list[0])
			if err != nil {
				return err
			}
			switch kind {
			case "fixedpos":
				if len(list) != 5 {
					return &MalformedEntryError{Path: pathString(path), Name: "data__" + item.Name}
				}
				lineno, err := toInt(list[1])
				if err != nil {
					return err
				}
				startcol, err := toInt(list[2])
				if err != nil {
					return err
				}
				length, err := toInt(list[3])
				if err != nil {
					return err
				}
				strip, err := toBool(list[4])
				if err != nil {
					return err
				}
				rows := p.Term.GetRegion(lineno, startcol, lineno, startcol+length)
				var value string
				if len(rows) > 0 {
					value = rows[0]
				}
				if strip {
					value = strings.TrimSpace(value)
				}
				p.Captures.set(origin, item.Name, value)
			default:
				return &UnknownDataKindError{Kind: kind}
			}
		}

		inheritFrom, err := p.Config.GetString(path, "inherit_from")
		if err != nil {
			return nil
		}
		path = config.Path{path[0], path[1], inheritFrom, path[3]}
	}
}

func pathString(path config.Path) string {
	return strings.Join(path, ".")
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	default:
		return 0, fmt.Errorf("screen: %v is not an int", v)
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("screen: %v is not a float", v)
	}
}

func toString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("screen: %v is not a string", v)
	}
	return s, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int:
		return x != 0, nil
	case float64:
		return x != 0, nil
	default:
		return false, fmt.Errorf("screen: %v is not a bool", v)
	}
}
