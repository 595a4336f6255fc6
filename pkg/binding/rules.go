package binding

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const defaultPatternMessage = "invalid format"

// Pattern pairs a regular expression with the message reported when a
// non-empty value does not match it.
type Pattern struct {
	Value   *regexp.Regexp
	Message string
}

// Rules is the declarative rule set evaluated by the engine for one field. An
// empty Required message leaves the field optional.
type Rules struct {
	Required string
	Pattern  *Pattern
}

// IsRequired reports whether the rule set rejects empty values.
func (r Rules) IsRequired() bool {
	return strings.TrimSpace(r.Required) != ""
}

// Check evaluates rules against a single value outside of a store and returns
// the first failing message, or "" when the value is valid. Interactive
// front-ends use it to re-prompt before committing a change.
func Check(rules Rules, value string) string {
	e, err := checkers.get(rules)
	if err != nil {
		return err.Error()
	}
	return e.check("value", value, rules)
}

// checkers holds one registered evaluator per distinct rule set so repeated
// Check calls reuse the validator instead of rebuilding it.
var checkers = &checkerCache{entries: make(map[string]*evaluator)}

type checkerCache struct {
	mu      sync.Mutex
	entries map[string]*evaluator
}

func (c *checkerCache) get(rules Rules) (*evaluator, error) {
	key := rulesKey(rules)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e, nil
	}
	e := newEvaluator()
	if err := e.register("value", rules); err != nil {
		return nil, err
	}
	c.entries[key] = e
	return e, nil
}

func (c *checkerCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func rulesKey(rules Rules) string {
	if rules.Pattern == nil || rules.Pattern.Value == nil {
		return rules.Required
	}
	return rules.Required + "\x00" + rules.Pattern.Value.String() + "\x00" + rules.Pattern.Message
}

// evaluator runs rule sets through go-playground/validator. Patterns are
// registered as per-field tags so the regular expression never has to be
// encoded inside a tag string.
type evaluator struct {
	validate *validator.Validate
	tags     map[string]string
	seq      int
}

func newEvaluator() *evaluator {
	return &evaluator{
		validate: validator.New(),
		tags:     make(map[string]string),
	}
}

func (e *evaluator) register(name string, rules Rules) error {
	if rules.Pattern == nil || rules.Pattern.Value == nil {
		delete(e.tags, name)
		return nil
	}

	tag, ok := e.tags[name]
	if !ok {
		e.seq++
		tag = patternTag(name, e.seq)
	}
	re := rules.Pattern.Value
	err := e.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		return fmt.Errorf("binding: register pattern for %q: %w", name, err)
	}
	e.tags[name] = tag
	return nil
}

// check returns the first failing rule message for value, or "" when valid.
// Required fires on empty input regardless of the pattern; the pattern is only
// consulted for non-empty values.
func (e *evaluator) check(name, value string, rules Rules) string {
	if rules.IsRequired() {
		if err := e.validate.Var(value, "required"); err != nil {
			return rules.Required
		}
	}
	if value == "" {
		return ""
	}

	tag, ok := e.tags[name]
	if !ok {
		return ""
	}
	if err := e.validate.Var(value, tag); err != nil {
		if msg := strings.TrimSpace(rules.Pattern.Message); msg != "" {
			return msg
		}
		return defaultPatternMessage
	}
	return ""
}

func patternTag(name string, seq int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pattern%d_", seq)
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
