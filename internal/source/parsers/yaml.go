// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/oreflot/flotation-mcp/internal/source"
)

// YAMLParser reads a mapping of field name to reading from YAML or JSON:
//
//	"% Iron Feed": 55.2
//	Starch Flow: "3019,53"
//	Ore Pulp pH: n/f
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) Name() string {
	return "yaml"
}

func (p *YAMLParser) CanHandle(src source.Source) bool {
	switch strings.ToLower(src.Format) {
	case "yaml", "yml", "json":
		return true
	}
	content := strings.TrimSpace(string(src.Content))
	// JSON object
	if strings.HasPrefix(content, "{") {
		return true
	}
	// Plain YAML: key: value on the first line
	first := strings.SplitN(content, "\n", 2)[0]
	return strings.Contains(first, ":") && !strings.ContainsAny(first, "\t;")
}

func (p *YAMLParser) Parse(_ context.Context, src source.Source) ([]source.Cell, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(src.Content, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML/JSON: %w", err)
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cells := make([]source.Cell, 0, len(keys))
	for _, key := range keys {
		cells = append(cells, source.Cell{
			Header:   key,
			Position: -1,
			Value:    scalarString(doc[key]),
		})
	}
	return cells, nil
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", t)
	}
}
