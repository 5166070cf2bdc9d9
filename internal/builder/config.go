package builder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/pelletier/go-toml/v2"
)

const ConfigFilename = "Imgmake.toml"

// DefaultTargets is used when a project has no Imgmake.toml
var DefaultTargets = []string{"ubuntu", "busybox"}

type Config struct {
	Project ProjectSection `toml:"project"`
	Targets TargetsSection `toml:"targets"`
}

// ProjectSection defines the [project] section
type ProjectSection struct {
	Name   string `toml:"name"`
	Output string `toml:"output"`
}

// TargetsSection defines the [targets(.*)] section
type TargetsSection struct {
	Names    []string `toml:"names"`
	Discover []string `toml:"discover"`
}

func DefaultConfig() *Config {
	return &Config{
		Targets: TargetsSection{Names: slices.Clone(DefaultTargets)},
	}
}

// mergeStructs appends every slice field of the src struct to the same field of dst.
// Sections only hold lists, other field kinds are rejected.
func mergeStructs(dst, src any) error {
	dstVal := reflect.ValueOf(dst)
	if dstVal.Kind() != reflect.Pointer || dstVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dst must be a pointer to a struct")
	}

	dstElem := dstVal.Elem()
	srcVal := reflect.ValueOf(src)

	if srcVal.Kind() == reflect.Pointer {
		srcVal = srcVal.Elem()
	}

	if srcVal.Kind() != reflect.Struct {
		return fmt.Errorf("src must be a struct or a pointer to a struct")
	}

	if dstElem.Type() != srcVal.Type() {
		return fmt.Errorf("dst and src must be of the same struct type")
	}

	for i := range srcVal.NumField() {
		srcField := srcVal.Field(i)
		dstField := dstElem.Field(i)

		if !dstField.CanSet() {
			continue
		}

		if dstField.Kind() != reflect.Slice {
			return fmt.Errorf("cannot merge field %s of kind %s", srcVal.Type().Field(i).Name, dstField.Kind())
		}
		if !srcField.IsNil() {
			dstField.Set(reflect.AppendSlice(dstField, srcField))
		}
	}

	return nil
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// unmarshalSection is a helper to parse sections without conditional logic
func unmarshalSection(rawCfg map[string]any, name string, dst any) error {
	if data, ok := rawCfg[name]; ok {
		if err := toml.Unmarshal([]byte(mustMarshal(data)), dst); err != nil {
			return fmt.Errorf("failed to parse [%s] section: %w", name, err)
		}
	}
	return nil
}

// unmarshalConditionalSection parses a section and merges every sub-table whose key is a true expression.
// Sub-tables are applied in sorted key order.
func unmarshalConditionalSection[T any](rawCfg map[string]any, name string, dst *T, env ConfigEnv) error {
	sectionData, ok := rawCfg[name]
	if !ok {
		return nil
	}

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		return fmt.Errorf("invalid [%s] section format: expected a table", name)
	}

	baseFields := make(map[string]any)
	conditionalFields := make(map[string]map[string]any)

	for key, val := range sectionMap {
		subMap, isTable := val.(map[string]any)
		if !isTable {
			baseFields[key] = val
			continue
		}
		if _, err := expr.Compile(key, expr.Env(env)); err != nil {
			return fmt.Errorf("[%s.%q] is neither a known field nor a valid condition: %w", name, key, err)
		}
		conditionalFields[key] = subMap
	}

	if len(baseFields) > 0 {
		if err := toml.Unmarshal([]byte(mustMarshal(baseFields)), dst); err != nil {
			return fmt.Errorf("failed to parse base [%s] section: %w", name, err)
		}
	}

	expressions := make([]string, 0, len(conditionalFields))
	for expression := range conditionalFields {
		expressions = append(expressions, expression)
	}
	slices.Sort(expressions)

	for _, expression := range expressions {
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			return fmt.Errorf("failed to compile expression for [%s.%q]: %w", name, expression, err)
		}

		result, err := expr.Run(program, env)
		if err != nil {
			return fmt.Errorf("failed to run expression for [%s.%q]: %w", name, expression, err)
		}

		matched, ok := result.(bool)
		if !ok {
			return fmt.Errorf("condition [%s.%q] evaluated to %T, expected bool", name, expression, result)
		}
		if !matched {
			continue
		}

		var condSection T
		if err := toml.Unmarshal([]byte(mustMarshal(conditionalFields[expression])), &condSection); err != nil {
			return fmt.Errorf("failed to parse conditional section [%s.%q]: %w", name, expression, err)
		}
		if err := mergeStructs(dst, condSection); err != nil {
			return fmt.Errorf("failed to merge conditional section [%s.%q]: %w", name, expression, err)
		}
	}

	return nil
}

var exprRegex = regexp.MustCompile(`\{\{(.+?)\}\}`)

// evaluateString finds and evaluates all {{...}} expressions in a string
func evaluateString(s string, env ConfigEnv) (string, error) {
	matches := exprRegex.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var builder strings.Builder
	lastIndex := 0

	for _, matchIndexes := range matches {
		fullMatchStart := matchIndexes[0]
		fullMatchEnd := matchIndexes[1]
		expressionStart := matchIndexes[2]
		expressionEnd := matchIndexes[3]

		builder.WriteString(s[lastIndex:fullMatchStart])

		expression := strings.TrimSpace(s[expressionStart:expressionEnd])
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			return "", fmt.Errorf("failed to compile expression %q: %w", expression, err)
		}

		result, err := expr.Run(program, env)
		if err != nil {
			return "", fmt.Errorf("failed to run expression %q: %w", expression, err)
		}

		fmt.Fprintf(&builder, "%v", result)
		lastIndex = fullMatchEnd
	}

	builder.WriteString(s[lastIndex:])

	return builder.String(), nil
}

// processExpressions recursively walks the parsed TOML data and evaluates expressions in strings
func processExpressions(data any, env ConfigEnv) (any, error) {
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			processedVal, err := processExpressions(val, env)
			if err != nil {
				return nil, err
			}
			v[key] = processedVal
		}
		return v, nil
	case []any:
		for i, item := range v {
			processedItem, err := processExpressions(item, env)
			if err != nil {
				return nil, err
			}
			v[i] = processedItem
		}
		return v, nil
	case string:
		return evaluateString(v, env)
	default:
		return data, nil
	}
}

func ParseConfig(rdr io.Reader, env ConfigEnv) (*Config, error) {
	var rawConfig map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&rawConfig); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}
	if rawConfig == nil {
		rawConfig = map[string]any{}
	}

	for key := range rawConfig {
		if key != "project" && key != "targets" {
			return nil, fmt.Errorf("unknown section [%s]", key)
		}
	}

	processedConfig, err := processExpressions(rawConfig, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in config: %w", err)
	}
	rawConfig = processedConfig.(map[string]any)

	cfg := new(Config)
	if err := unmarshalSection(rawConfig, "project", &cfg.Project); err != nil {
		return nil, err
	}
	if err := unmarshalConditionalSection(rawConfig, "targets", &cfg.Targets, env); err != nil {
		return nil, err
	}

	for i, name := range cfg.Targets.Names {
		if err := ValidateName(name); err != nil {
			return nil, fmt.Errorf("targets.names[%d]: %w", i, err)
		}
	}

	return cfg, nil
}

// ParseConfigFromFile parses and validates a config file from a filepath
func ParseConfigFromFile(path string, env ConfigEnv) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := ParseConfig(bufio.NewReader(f), env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ValidateName rejects names that cannot appear in a make or ninja target, or
// that the shell would interpret when running the recipe lines unquoted
func ValidateName(name string) error {
	if name == "" {
		return errors.New("empty target name")
	}
	if i := strings.IndexFunc(name, isIllegalNameRune); i >= 0 {
		return fmt.Errorf("target name %q contains illegal character %q", name, name[i])
	}
	return nil
}

func isIllegalNameRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', ':', '#', '$', '=':
		return true
	case '|', '&', ';', '<', '>', '(', ')', '`', '\'', '"', '\\', '*', '?', '[', ']', '{', '}', '!', '~':
		return true
	}
	return false
}

//
// expr-lang helpers
//

type ConfigEnv struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Environ    map[string]string `expr:"environ"`
	basedir    string
}

func NewConfigEnv(basedir string) ConfigEnv {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			environ[k] = v
		}
	}

	return ConfigEnv{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    environ,
		basedir:    basedir,
	}
}

// Exists reports whether path, relative to the project directory, exists
func (env ConfigEnv) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(env.basedir, path))
	return err == nil
}
