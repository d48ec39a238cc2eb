package flags

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
)

const (
	toggleTrueLiteralConstant         = "true"
	toggleFalseLiteralConstant        = "false"
	toggleTypeNameConstant            = "bool"
	longFlagPrefixConstant            = "--"
	shortFlagPrefixConstant           = "-"
	flagValueSeparatorConstant        = "="
	argumentTerminatorConstant        = "--"
	toggleParseErrorTemplateConstant  = "invalid toggle value %q"
	toggleUsageTemplateConstant       = "`%s` %s"
	toggleBareUsageTemplateConstant   = "`%s`"
	toggleEnabledPlaceholderConstant  = "<YES|no>"
	toggleDisabledPlaceholderConstant = "<yes|NO>"
)

var (
	toggleVocabulary = map[string]bool{
		"true": true, "yes": true, "on": true, "1": true, "t": true, "y": true,
		"false": false, "no": false, "off": false, "0": false, "f": false, "n": false,
	}

	toggleTokensMutex sync.RWMutex
	toggleTokens      = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag that also accepts yes/no style values, either attached with
// "=" or as the following argument once NormalizeToggleArguments has run.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.VarP(newToggleValue(defaultValue, target), name, shorthand, usage)
	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueLiteralConstant
	flag.Usage = toggleUsage(usage, defaultValue)

	toggleTokensMutex.Lock()
	defer toggleTokensMutex.Unlock()
	toggleTokens[longFlagPrefixConstant+name] = struct{}{}
	if len(shorthand) > 0 {
		toggleTokens[shortFlagPrefixConstant+shorthand] = struct{}{}
	}
}

// NormalizeToggleArguments joins a registered toggle and its separate value, so "--dry-run no"
// becomes "--dry-run=no". Arguments after "--" are left alone.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			return append(normalized, arguments[index:]...)
		}
		if joinsNextArgument(current, arguments[index+1:]) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, current)
	}
	return normalized
}

// ParseToggleValue interprets yes/no, on/off, true/false, 1/0 and their single-letter forms. An empty
// value means true.
func ParseToggleValue(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	parsedValue, known := toggleVocabulary[normalizedValue]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplateConstant, rawValue)
	}
	return parsedValue, nil
}

// ToggleDecodeHook decodes string settings into booleans using the toggle vocabulary. A blank
// string decodes to false.
func ToggleDecodeHook() mapstructure.DecodeHookFuncType {
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if sourceType.Kind() != reflect.String || targetType.Kind() != reflect.Bool {
			return data, nil
		}
		rawValue := reflect.ValueOf(data).String()
		if len(strings.TrimSpace(rawValue)) == 0 {
			return false, nil
		}
		return ParseToggleValue(rawValue)
	}
}

func joinsNextArgument(current string, remaining []string) bool {
	if len(remaining) == 0 || strings.HasPrefix(remaining[0], shortFlagPrefixConstant) {
		return false
	}
	if strings.Contains(current, flagValueSeparatorConstant) {
		return false
	}
	toggleTokensMutex.RLock()
	defer toggleTokensMutex.RUnlock()
	_, registered := toggleTokens[current]
	return registered
}

func toggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDisabledPlaceholderConstant
	if defaultValue {
		placeholder = toggleEnabledPlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleBareUsageTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplateConstant, placeholder, trimmedDescription)
}

type toggleValue struct {
	value  bool
	target *bool
}

func newToggleValue(defaultValue bool, target *bool) *toggleValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleValue{value: defaultValue, target: target}
}

func (toggle *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := ParseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}
	toggle.value = parsedValue
	if toggle.target != nil {
		*toggle.target = parsedValue
	}
	return nil
}

func (toggle *toggleValue) String() string {
	if toggle != nil && toggle.value {
		return toggleTrueLiteralConstant
	}
	return toggleFalseLiteralConstant
}

func (toggle *toggleValue) Type() string {
	return toggleTypeNameConstant
}
