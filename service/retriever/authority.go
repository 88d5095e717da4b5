package retriever

import (
	"strings"

	"github.com/viant/conclave/model/evidence"
)

// AuthorityRule maps a domain pattern onto an authority tier. Rules are
// evaluated in order; the first match wins and the fallback is Medium.
type AuthorityRule struct {
	Name    string
	Matches func(domain string) bool
	Tier    evidence.Authority
}

var (
	highAuthoritySuffixes = []string{
		".gov", ".edu", ".mil", ".int",
	}
	highAuthorityDomains = []string{
		"wikipedia.org", "nature.com", "science.org", "acm.org", "ieee.org",
		"arxiv.org", "nist.gov", "who.int", "reuters.com", "apnews.com",
	}
	lowAuthorityPatterns = []string{
		"blog", "forum", "reddit.com", "quora.com", "medium.com",
		"substack.com", "facebook.com", "twitter.com", "x.com",
		"pinterest.com", "tumblr.com", "answers.",
	}
)

// authorityRules grades source domains. Government, education and
// established organisations rank high; blog and forum patterns rank low.
var authorityRules = []AuthorityRule{
	{
		Name: "official-suffix",
		Matches: func(domain string) bool {
			for _, suffix := range highAuthoritySuffixes {
				if strings.HasSuffix(domain, suffix) {
					return true
				}
			}
			return false
		},
		Tier: evidence.AuthorityHigh,
	},
	{
		Name: "established-organisation",
		Matches: func(domain string) bool {
			for _, known := range highAuthorityDomains {
				if domain == known || strings.HasSuffix(domain, "."+known) {
					return true
				}
			}
			return false
		},
		Tier: evidence.AuthorityHigh,
	},
	{
		Name: "blog-or-forum",
		Matches: func(domain string) bool {
			for _, pattern := range lowAuthorityPatterns {
				if strings.Contains(domain, pattern) {
					return true
				}
			}
			return false
		},
		Tier: evidence.AuthorityLow,
	},
}

// AuthorityOf derives the authority tier for a domain.
func AuthorityOf(domain string) evidence.Authority {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
	for _, rule := range authorityRules {
		if rule.Matches(domain) {
			return rule.Tier
		}
	}
	return evidence.AuthorityMedium
}
