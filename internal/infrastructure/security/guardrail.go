package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/quack-go/assets"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/pkg/filesystem"
	"github.com/doeshing/quack-go/internal/ports"
)

// Guardrail implements the PathGuard port with regex rules over absolute
// paths.
type Guardrail struct {
	home     string
	patterns []compiledPattern
}

type compiledPattern struct {
	re         *regexp.Regexp
	rule       PathPattern
	operations map[string]bool
}

// PathPattern describes a regex-based guardrail rule.
type PathPattern struct {
	Pattern    string   `yaml:"pattern"`
	Level      string   `yaml:"level"`
	Message    string   `yaml:"message"`
	Action     string   `yaml:"action"`
	Operations []string `yaml:"operations"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		PathPatterns []PathPattern `yaml:"path_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail loads rules from path, falling back to the embedded defaults
// when the file does not exist or declares no patterns.
func NewGuardrail(path string) (*Guardrail, error) {
	rules, err := loadRules(filesystem.ExpandPath(path))
	if err != nil {
		return nil, err
	}
	return compile(rules, filepath.ToSlash(filesystem.UserHomeDir()))
}

func compile(rules RulesFile, home string) (*Guardrail, error) {
	g := &Guardrail{home: home}
	for _, pattern := range rules.Rules.PathPatterns {
		re, err := regexp.Compile(substituteHome(pattern.Pattern, home))
		if err != nil {
			return nil, fmt.Errorf("guardrail pattern %q: %w", pattern.Pattern, err)
		}
		compiled := compiledPattern{re: re, rule: pattern}
		if len(pattern.Operations) > 0 {
			compiled.operations = make(map[string]bool, len(pattern.Operations))
			for _, op := range pattern.Operations {
				compiled.operations[op] = true
			}
		}
		g.patterns = append(g.patterns, compiled)
	}
	return g, nil
}

// substituteHome expands an anchored "^~" to the quoted home directory.
func substituteHome(pattern, home string) string {
	if strings.HasPrefix(pattern, "^~") {
		return "^" + regexp.QuoteMeta(home) + pattern[2:]
	}
	return pattern
}

// Evaluate implements ports.PathGuard.
func (g *Guardrail) Evaluate(operation, path string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("guardrail nil")
	}
	assessment := domain.RiskAssessment{
		Level:  domain.RiskSafe,
		Action: domain.ActionAllow,
	}
	target := normalize(path)
	for _, pattern := range g.patterns {
		if pattern.operations != nil && !pattern.operations[operation] {
			continue
		}
		if !pattern.re.MatchString(target) {
			continue
		}
		ruleLevel := parseRiskLevel(pattern.rule.Level)
		if moreSevere(ruleLevel, assessment.Level) {
			assessment.Level = ruleLevel
			assessment.Action = parseAction(pattern.rule.Action, ruleLevel)
		}
		assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
		assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.Pattern)
	}
	return assessment, nil
}

func normalize(path string) string {
	path = filesystem.ExpandPath(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.ToSlash(path)
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) || path == "" {
		data = assets.DefaultGuardrailYAML
	} else if err != nil {
		return RulesFile{}, fmt.Errorf("read guardrail rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("parse guardrail rules: %w", err)
	}
	if len(rules.Rules.PathPatterns) == 0 {
		if err := yaml.Unmarshal(assets.DefaultGuardrailYAML, &rules); err != nil {
			return RulesFile{}, fmt.Errorf("parse default guardrail rules: %w", err)
		}
	}
	return rules, nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "low":
		return domain.RiskLow
	case "medium":
		return domain.RiskMedium
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

func parseAction(value string, fallback domain.RiskLevel) domain.GuardrailAction {
	switch strings.ToLower(value) {
	case "allow":
		return domain.ActionAllow
	case "confirm":
		return domain.ActionConfirm
	case "block":
		return domain.ActionBlock
	default:
		if fallback == domain.RiskSafe || fallback == domain.RiskLow {
			return domain.ActionAllow
		}
		return domain.ActionConfirm
	}
}

func moreSevere(next domain.RiskLevel, current domain.RiskLevel) bool {
	order := map[domain.RiskLevel]int{
		domain.RiskSafe:     0,
		domain.RiskLow:      1,
		domain.RiskMedium:   2,
		domain.RiskHigh:     3,
		domain.RiskCritical: 4,
	}
	return order[next] > order[current]
}

var _ ports.PathGuard = (*Guardrail)(nil)
