// Package intent turns free-form text into a domain.Intent.
//
// Every parser is a pure function of its input: an ordered list of compiled
// patterns is tried top to bottom and the first match wins. A parser returns
// nil when nothing matches; it never returns an error.
package intent

import (
	"regexp"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
)

// Parser classifies text for a single domain.
type Parser interface {
	Domain() domain.Domain
	Parse(text string) *domain.Intent
}

// rule maps one pattern to an operation. build receives the submatches and
// returns the named parameters; a nil build yields no parameters.
type rule struct {
	op    string
	re    *regexp.Regexp
	build func(m []string) domain.Params
}

type ruleParser struct {
	domain domain.Domain
	rules  []rule
}

func (p *ruleParser) Domain() domain.Domain { return p.domain }

func (p *ruleParser) Parse(text string) *domain.Intent {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, r := range p.rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var params domain.Params
		if r.build != nil {
			params = r.build(m)
		}
		return domain.NewIntent(p.domain, r.op, params)
	}
	return nil
}

// Chain tries parsers in order and returns the first match.
type Chain []Parser

// DefaultChain returns the domain parsers in routing order. The order is part
// of the routing contract: GitHub, Messaging, Email, File, App.
func DefaultChain() Chain {
	return Chain{
		NewGitHubParser(),
		NewMessagingParser(),
		NewEmailParser(),
		NewFileParser(),
		NewAppParser(),
	}
}

// Classify returns the intent of the first parser that matches, or nil.
func (c Chain) Classify(text string) *domain.Intent {
	for _, p := range c {
		if in := p.Parse(text); in != nil {
			return in
		}
	}
	return nil
}

// group returns submatch i or "" when it did not participate.
func group(m []string, i int) string {
	if i < len(m) {
		return strings.TrimSpace(m[i])
	}
	return ""
}

// unquote strips one layer of matching quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// normalizeRecipient collapses separators in phone numbers and leaves names alone.
func normalizeRecipient(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if s[0] == '+' || (s[0] >= '0' && s[0] <= '9') {
		return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(s)
	}
	return s
}
