// Package config implements the hierarchical key/value tree the
// automaton's behavior units and the screen-imaging pipeline read
// their configuration from: typed accessors, prefixed-sibling
// enumeration with a pluggable sort order, and a command-line override
// grammar, all addressed by a section path (a sequence of segments)
// plus an item name.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Path is a section path: a sequence of segments, e.g.
// []string{"screens", "BaseConnection", "MENU", "default"}.
type Path []string

// Tree is a hierarchical key/value tree. The zero value is not usable;
// construct one with New or Load.
type Tree struct {
	root map[string]any
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{root: make(map[string]any)}
}

// Load reads and parses a YAML config file into a Tree.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	root := make(map[string]any)
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &Tree{root: root}, nil
}

// LoadString parses YAML text directly into a Tree, without touching
// the filesystem. Used by tests and by callers that assemble config
// from something other than a file (e.g. an embedded default).
func LoadString(yamlText string) (*Tree, error) {
	root := make(map[string]any)
	if err := yaml.Unmarshal([]byte(yamlText), &root); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return &Tree{root: root}, nil
}

// sectionAt walks path from the root and returns the map found there,
// or (nil, false) if any segment is missing or not itself a section.
func (t *Tree) sectionAt(path Path) (map[string]any, bool) {
	subtree := t.root
	for _, segment := range path {
		next, ok := subtree[segment]
		if !ok {
			return nil, false
		}
		m, ok := asSection(next)
		if !ok {
			return nil, false
		}
		subtree = m
	}
	return subtree, true
}

func asSection(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// Exists reports whether name is present under path.
func (t *Tree) Exists(path Path, name string) bool {
	section, ok := t.sectionAt(path)
	if !ok {
		return false
	}
	_, ok = section[name]
	return ok
}

func (t *Tree) raw(path Path, name string) (any, bool) {
	section, ok := t.sectionAt(path)
	if !ok {
		return nil, false
	}
	v, ok := section[name]
	return v, ok
}

// GetString fetches a string item, failing with KeyMissingError if
// absent.
func (t *Tree) GetString(path Path, name string) (string, error) {
	v, ok := t.raw(path, name)
	if !ok {
		return "", &KeyMissingError{Path: path, Name: name}
	}
	return fmt.Sprint(v), nil
}

// GetStringDefault is GetString with a fallback for the absent case.
func (t *Tree) GetStringDefault(path Path, name, def string) string {
	v, err := t.GetString(path, name)
	if err != nil {
		return def
	}
	return v
}

// GetEscaped fetches a string item and decodes Go-style backslash
// escapes in it (the analogue of the original's
// decode('string_escape')), failing with KeyMissingError if absent.
func (t *Tree) GetEscaped(path Path, name string) (string, error) {
	raw, err := t.GetString(path, name)
	if err != nil {
		return "", err
	}
	return decodeEscapes(raw), nil
}

// GetEscapedDefault is GetEscaped with a fallback for the absent case.
// The default itself is NOT escape-decoded (it is assumed literal).
func (t *Tree) GetEscapedDefault(path Path, name, def string) string {
	v, err := t.GetEscaped(path, name)
	if err != nil {
		return def
	}
	return v
}

func decodeEscapes(s string) string {
	quoted := `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	if decoded, err := strconv.Unquote(quoted); err == nil {
		return decoded
	}
	return s
}

// GetBool fetches a boolean item, failing with KeyMissingError if
// absent.
func (t *Tree) GetBool(path Path, name string) (bool, error) {
	v, ok := t.raw(path, name)
	if !ok {
		return false, &KeyMissingError{Path: path, Name: name}
	}
	switch value := v.(type) {
	case bool:
		return value, nil
	case string:
		return strconv.ParseBool(value)
	default:
		return false, fmt.Errorf("config: %v is not a bool", v)
	}
}

// GetBoolDefault is GetBool with a fallback for the absent case.
func (t *Tree) GetBoolDefault(path Path, name string, def bool) bool {
	v, err := t.GetBool(path, name)
	if err != nil {
		return def
	}
	return v
}

// GetInt fetches an integer item, failing with KeyMissingError if
// absent.
func (t *Tree) GetInt(path Path, name string) (int, error) {
	v, ok := t.raw(path, name)
	if !ok {
		return 0, &KeyMissingError{Path: path, Name: name}
	}
	return coerceInt(v)
}

func coerceInt(v any) (int, error) {
	switch value := v.(type) {
	case int:
		return value, nil
	case int64:
		return int(value), nil
	case float64:
		return int(value), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(value))
	default:
		return 0, fmt.Errorf("config: %v is not an int", v)
	}
}

// GetIntDefault is GetInt with a fallback for the absent case.
func (t *Tree) GetIntDefault(path Path, name string, def int) int {
	v, err := t.GetInt(path, name)
	if err != nil {
		return def
	}
	return v
}

// GetFloat fetches a float item, failing with KeyMissingError if
// absent.
func (t *Tree) GetFloat(path Path, name string) (float64, error) {
	v, ok := t.raw(path, name)
	if !ok {
		return 0, &KeyMissingError{Path: path, Name: name}
	}
	switch value := v.(type) {
	case float64:
		return value, nil
	case int:
		return float64(value), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	default:
		return 0, fmt.Errorf("config: %v is not a float", v)
	}
}

// GetFloatDefault is GetFloat with a fallback for the absent case.
func (t *Tree) GetFloatDefault(path Path, name string, def float64) float64 {
	v, err := t.GetFloat(path, name)
	if err != nil {
		return def
	}
	return v
}

// GetList fetches a list item (used by screens.* verify_/redirect_/
// data__ entries, each of which is a short heterogeneous list),
// failing with KeyMissingError if absent.
func (t *Tree) GetList(path Path, name string) ([]any, error) {
	v, ok := t.raw(path, name)
	if !ok {
		return nil, &KeyMissingError{Path: path, Name: name}
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("config: %v is not a list", v)
	}
	return list, nil
}

// Item is one (name, value) pair yielded by GetItems.
type Item struct {
	Name  string
	Value any
}

// SortFunc orders two item names for GetItems enumeration.
type SortFunc func(a, b string) bool

// NumericSuffixOrder orders names that parse as decimal integers
// numerically, the analogue of the original's integer_sort_order. It
// parses the whole name, so it is used with the prefix already
// stripped (redirect_N enumeration yields "2" and "10", and 10 follows
// 2); if either name is not an integer the two compare as strings.
func NumericSuffixOrder(a, b string) bool {
	na, erra := strconv.Atoi(a)
	nb, errb := strconv.Atoi(b)
	if erra == nil && errb == nil {
		return na < nb
	}
	return a < b
}

// GetItems yields every (name, value) pair under path whose name
// begins with prefix. If stripPrefix, the prefix is removed from the
// yielded name. If sortFn is non-nil, items are enumerated in that
// order; otherwise enumeration order is unspecified (map order).
func (t *Tree) GetItems(path Path, prefix string, stripPrefix bool, sortFn SortFunc) []Item {
	section, ok := t.sectionAt(path)
	if !ok {
		return nil
	}
	var items []Item
	for key, value := range section {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		name := key
		if stripPrefix {
			name = strings.TrimPrefix(key, prefix)
		}
		items = append(items, Item{Name: name, Value: value})
	}
	if sortFn != nil {
		sort.Slice(items, func(i, j int) bool { return sortFn(items[i].Name, items[j].Name) })
	}
	return items
}

// UpdateFromArgs parses each argument as "[SECTION[.SUBSECTION…].]OPTION=VALUE",
// creating intermediate sections as needed, and applies it to the tree.
// It fails with BadOptionFormatError on a malformed argument.
func (t *Tree) UpdateFromArgs(args []string) error {
	for _, arg := range args {
		if err := t.updateFromArg(arg); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) updateFromArg(arg string) error {
	eq := strings.IndexByte(arg, '=')
	if eq < 0 {
		return &BadOptionFormatError{Arg: arg}
	}
	key, value := arg[:eq], arg[eq+1:]
	dot := strings.LastIndexByte(key, '.')
	var sections []string
	option := key
	if dot >= 0 {
		sections = strings.Split(key[:dot], ".")
		option = key[dot+1:]
	}
	if option == "" || !isOptionName(option) {
		return &BadOptionFormatError{Arg: arg}
	}
	for _, s := range sections {
		if s == "" || !isSectionName(s) {
			return &BadOptionFormatError{Arg: arg}
		}
	}

	subtree := t.root
	for _, s := range sections {
		next, ok := subtree[s]
		if !ok {
			m := make(map[string]any)
			subtree[s] = m
			subtree = m
			continue
		}
		m, ok := asSection(next)
		if !ok {
			return &BadOptionFormatError{Arg: arg}
		}
		subtree = m
	}
	subtree[option] = value
	return nil
}

func isOptionName(s string) bool {
	for _, r := range s {
		if !(r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

func isSectionName(s string) bool {
	for _, r := range s {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}
