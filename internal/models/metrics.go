package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aleister1102/stockwatch/internal/common"
)

// Metric is one named count within a counts-kind signal.
type Metric struct {
	Name  string
	Value int
}

// Metrics is an ordered list of named counts. It encodes to a JSON object
// whose keys keep the list order.
type Metrics []Metric

// Get returns the value of the named metric.
func (m Metrics) Get(name string) (int, bool) {
	for _, metric := range m {
		if metric.Name == name {
			return metric.Value, true
		}
	}
	return 0, false
}

// Names returns metric names in order.
func (m Metrics) Names() []string {
	names := make([]string, len(m))
	for i, metric := range m {
		names[i] = metric.Name
	}
	return names
}

// Validate checks for empty or duplicate names and negative values.
func (m Metrics) Validate() error {
	seen := make(map[string]struct{}, len(m))
	for _, metric := range m {
		if strings.TrimSpace(metric.Name) == "" {
			return common.NewValidationError("metrics.name", metric.Name, "metric name is required")
		}
		if _, dup := seen[metric.Name]; dup {
			return common.NewValidationError("metrics.name", metric.Name, "duplicate metric name")
		}
		if metric.Value < 0 {
			return common.NewValidationError("metrics."+metric.Name, metric.Value, "metric value must not be negative")
		}
		seen[metric.Name] = struct{}{}
	}
	return nil
}

func (m Metrics) String() string {
	parts := make([]string, len(m))
	for i, metric := range m {
		parts[i] = metric.Name + "=" + strconv.Itoa(metric.Value)
	}
	return strings.Join(parts, " ")
}

// MarshalJSON writes {"name": value, ...} in list order.
func (m Metrics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, metric := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(metric.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(metric.Value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metrics: expected object, got %v", tok)
	}

	var out Metrics
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metrics: expected string key, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("metrics: value for %q is not a number", name)
		}
		value, err := strconv.Atoi(num.String())
		if err != nil {
			return fmt.Errorf("metrics: value for %q is not an integer: %w", name, err)
		}
		out = append(out, Metric{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

func itoa(v int) string { return strconv.Itoa(v) }
