package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pokeproxy/internal/common/validation"
	"pokeproxy/internal/models"
)

// ErrRulesFile is returned when the rules file cannot be read or parsed
var ErrRulesFile = errors.New("invalid rules file")

// LoadRules reads the ordered rule list from path. Files ending in .yaml or
// .yml are YAML, everything else is JSON. The document must have a top-level
// "rules" list; every rule needs an absolute http(s) url.
func LoadRules(path string) (*models.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRulesFile, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseRulesYAML(data)
	default:
		return ParseRulesJSON(data)
	}
}

// ParseRulesJSON parses a JSON rules document
func ParseRulesJSON(data []byte) (*models.RuleSet, error) {
	var doc struct {
		Rules *[]models.Rule `json:"rules"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRulesFile, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after rules document", ErrRulesFile)
	}
	if doc.Rules == nil {
		return nil, fmt.Errorf("%w: missing \"rules\" list", ErrRulesFile)
	}
	return validateRules(*doc.Rules)
}

// ParseRulesYAML parses a YAML rules document
func ParseRulesYAML(data []byte) (*models.RuleSet, error) {
	var doc struct {
		Rules *[]models.Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRulesFile, err)
	}
	if doc.Rules == nil {
		return nil, fmt.Errorf("%w: missing \"rules\" list", ErrRulesFile)
	}
	return validateRules(*doc.Rules)
}

func validateRules(rules []models.Rule) (*models.RuleSet, error) {
	set := &models.RuleSet{Rules: rules}
	if err := validation.ValidateStruct(set); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRulesFile, err)
	}
	return set, nil
}
