package collector

import (
	"regexp"
	"sort"
	"strings"
)

var (
	metricNameRE = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	labelNameRE  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Labels maps label names to label values. Values may hold any text except
// '$', e.g.
//
//	counter.Add(42, collector.Labels{"code": "404", "method": "GET"})
type Labels map[string]string

// LabelPair is one rendered label of a series.
type LabelPair struct {
	Name  string
	Value string
}

// labelKey returns the canonical, order-independent key of labels. Names
// cannot contain ':' or '$', so the key is unambiguous as long as values
// carry no '$'; resolve rejects values that do.
func labelKey(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}

	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(labels[name])
		b.WriteByte('$')
	}
	return b.String()
}

// resolve validates labels against the declared label names and returns the
// store key together with the pairs in declaration order.
func (c *collector) resolve(labels Labels) (string, []LabelPair, error) {
	for name, value := range labels {
		if !c.declared(name) {
			return "", nil, &UnknownLabelError{Label: name}
		}
		if strings.ContainsRune(value, '$') {
			return "", nil, invalidf(ErrInvalidLabelValue, value)
		}
	}
	return labelKey(labels), c.pairs(labels), nil
}

func (c *collector) declared(name string) bool {
	for _, l := range c.labelNames {
		if l == name {
			return true
		}
	}
	return false
}

func (c *collector) pairs(labels Labels) []LabelPair {
	if len(labels) == 0 {
		return nil
	}
	out := make([]LabelPair, 0, len(labels))
	for _, name := range c.labelNames {
		if v, ok := labels[name]; ok {
			out = append(out, LabelPair{Name: name, Value: v})
		}
	}
	return out
}

func validateLabelNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !labelNameRE.MatchString(name) {
			return invalidf(ErrInvalidLabelName, name)
		}
		if _, ok := seen[name]; ok {
			return invalidf(ErrDuplicateLabel, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
