package intent

import (
	"regexp"

	"github.com/doeshing/quack-go/internal/domain"
)

// NewAppParser recognises requests to start desktop applications. Launch
// verbs are anchored at the start of the input so that "open" inside a
// sentence does not trigger a launch.
func NewAppParser() Parser {
	return &ruleParser{
		domain: domain.DomainApp,
		rules: []rule{
			{
				op: domain.OpListApps,
				re: regexp.MustCompile(`(?i)^(?:list|show)\s+(?:all\s+|my\s+)?(?:installed\s+)?(?:apps|applications|programs)\b`),
			},
			{
				op: domain.OpLaunchApp,
				re: regexp.MustCompile(`(?i)^(?:please\s+)?(?:open|launch|start|run)\s+(?:the\s+)?(?:app(?:lication)?\s+)?["']?([\w .+\-]+?)["']?(?:\s+app(?:lication)?)?\s*$`),
				build: func(m []string) domain.Params {
					return domain.Params{"app_name": group(m, 1)}
				},
			},
		},
	}
}
