package intent

import (
	"regexp"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
)

const repoRef = `(?:in|on|for|of)\s+(?:the\s+)?(?:repo(?:sitory)?\s+)?([\w.\-]+(?:/[\w.\-]+)?)`

// NewGitHubParser recognises repository, issue and pull request requests.
func NewGitHubParser() Parser {
	return &ruleParser{
		domain: domain.DomainGitHub,
		rules: []rule{
			{
				op: domain.OpSetupGitHub,
				re: regexp.MustCompile(`(?i)^(?:set\s?up|configure|connect)\s+(?:my\s+)?github\b`),
			},
			{
				op: domain.OpWhoAmI,
				re: regexp.MustCompile(`(?i)\b(?:who\s+am\s+i\s+on\s+github|(?:my|show)\s+github\s+(?:user(?:name)?|account|profile))\b`),
			},
			{
				op: domain.OpCreateRepo,
				re: regexp.MustCompile(`(?i)\b(?:create|make|start)\s+(?:a\s+)?(?:new\s+)?(private\s+|public\s+)?(?:github\s+)?repo(?:sitory)?\s+(?:called\s+|named\s+)?["']?([\w.\-]+)["']?(?:\s+(?:with\s+description|described\s+as|about)\s+["']?(.+?)["']?)?\s*$`),
				build: func(m []string) domain.Params {
					return domain.Params{
						"name":        group(m, 2),
						"private":     strings.EqualFold(group(m, 1), "private"),
						"description": group(m, 3),
					}
				},
			},
			{
				op: domain.OpListRepos,
				re: regexp.MustCompile(`(?i)\b(?:list|show|get|display|what\s+are)\s+(?:all\s+)?(?:of\s+)?my\s+(?:github\s+)?repo(?:sitorie)?s\b`),
			},
			{
				op: domain.OpCreateIssue,
				re: regexp.MustCompile(`(?i)\b(?:create|open|file|add)\s+(?:an?\s+)?(?:new\s+)?(?:github\s+)?issue\s+(?:titled\s+|called\s+)?"([^"]+)"\s+` + repoRef),
				build: func(m []string) domain.Params {
					return domain.Params{"title": group(m, 1), "repo": group(m, 2)}
				},
			},
			{
				op: domain.OpCreateIssue,
				re: regexp.MustCompile(`(?i)\b(?:create|open|file|add)\s+(?:an?\s+)?(?:new\s+)?(?:github\s+)?issue\s+` + repoRef + `(?:\s*[:\-]\s*(.+)|\s+(?:titled|called|about)\s+(.+))?\s*$`),
				build: func(m []string) domain.Params {
					title := group(m, 2)
					if title == "" {
						title = group(m, 3)
					}
					return domain.Params{"repo": group(m, 1), "title": unquote(title)}
				},
			},
			{
				op: domain.OpCloseIssue,
				re: regexp.MustCompile(`(?i)\bclose\s+(?:github\s+)?issue\s+#?(\d+)(?:\s+` + repoRef + `)?`),
				build: func(m []string) domain.Params {
					return domain.Params{"number": group(m, 1), "repo": group(m, 2)}
				},
			},
			{
				op: domain.OpListIssues,
				re: regexp.MustCompile(`(?i)\b(?:list|show|get|display)\s+(?:the\s+|all\s+|open\s+|my\s+)*(?:github\s+)?issues(?:\s+` + repoRef + `)?`),
				build: func(m []string) domain.Params {
					return domain.Params{"repo": group(m, 1)}
				},
			},
			{
				op: domain.OpListPRs,
				re: regexp.MustCompile(`(?i)\b(?:list|show|get|display)\s+(?:the\s+|all\s+|open\s+|my\s+)*(?:github\s+)?(?:pull\s+requests|prs)(?:\s+` + repoRef + `)?`),
				build: func(m []string) domain.Params {
					return domain.Params{"repo": group(m, 1)}
				},
			},
		},
	}
}
