// Package rules загружает декларативный документ правил движка решений (YAML или JSON).
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"leasing_hub/internal/domain"

	"gopkg.in/yaml.v3"
)

const rootKey = "decisionRules"

var ErrInvalidDocument = errors.New("invalid decision rules document")

type categoryDoc struct {
	Enabled    bool               `yaml:"enabled"`
	Conditions []domain.Condition `yaml:"conditions"`
}

// LoadFile читает документ правил из файла.
func LoadFile(path string) (domain.DecisionRuleConfig, error) {
	const op = "rules.LoadFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DecisionRuleConfig{}, fmt.Errorf("%s: %w", op, err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return domain.DecisionRuleConfig{}, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return cfg, nil
}

// Parse разбирает документ вида {decisionRules: {<category>: {enabled, conditions}}}.
// Порядок категорий сохраняется таким, как в документе.
func Parse(r io.Reader) (domain.DecisionRuleConfig, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return domain.DecisionRuleConfig{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return domain.DecisionRuleConfig{}, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	root := mappingValue(doc.Content[0], rootKey)
	if root == nil {
		return domain.DecisionRuleConfig{}, fmt.Errorf("%w: missing %q mapping", ErrInvalidDocument, rootKey)
	}

	var cfg domain.DecisionRuleConfig
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value

		var cd categoryDoc
		if err := root.Content[i+1].Decode(&cd); err != nil {
			return domain.DecisionRuleConfig{}, fmt.Errorf("%w: category %q: %v", ErrInvalidDocument, name, err)
		}
		for j, c := range cd.Conditions {
			if c.Rule == "" {
				return domain.DecisionRuleConfig{}, fmt.Errorf("%w: category %q: condition %d has no rule name", ErrInvalidDocument, name, j)
			}
			if c.Parameters == nil {
				cd.Conditions[j].Parameters = domain.Parameters{}
			}
		}

		cfg.Categories = append(cfg.Categories, domain.RuleCategory{
			Name:       name,
			Enabled:    cd.Enabled,
			Conditions: cd.Conditions,
		})
	}

	return cfg, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			v := n.Content[i+1]
			if v.Kind != yaml.MappingNode {
				return nil
			}
			return v
		}
	}
	return nil
}
