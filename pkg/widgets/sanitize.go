package widgets

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy
)

// SanitizeDescription keeps the small HTML subset allowed in section and field
// descriptions (emphasis, links, lists, paragraphs) and strips the rest.
func SanitizeDescription(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	descriptionPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("b", "strong", "em", "i", "u", "p", "br", "ul", "ol", "li", "span")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		descriptionPolicy = policy
	})
	return descriptionPolicy.Sanitize(raw)
}
