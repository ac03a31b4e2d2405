package discover

import (
	"context"
	"regexp"
)

var (
	// markdownLink matches [label](target) with a non-empty target.
	markdownLink = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)\)`)

	// bareURL matches absolute http(s) URLs appearing outside markdown
	// link syntax.
	bareURL = regexp.MustCompile(`https?://[^\s<>"'\)\]]+`)
)

// fromLLMSTxt reads the /llms.txt manifest, a markdown index of a
// site's pages published for language-model consumers. Both markdown
// link targets and bare URLs count; relative targets resolve against
// the seed.
func (a *Aggregator) fromLLMSTxt(ctx context.Context) ([]string, error) {
	body, err := a.get(ctx, a.abs("/llms.txt"))
	if err != nil {
		return nil, err
	}
	manifest := string(body)

	var urls []string
	for _, m := range markdownLink.FindAllStringSubmatch(manifest, -1) {
		if resolved := a.resolve(m[1]); resolved != "" {
			urls = append(urls, resolved)
		}
	}
	// Strip link targets before scanning for bare URLs so nothing is
	// counted twice.
	remainder := markdownLink.ReplaceAllString(manifest, "")
	urls = append(urls, bareURL.FindAllString(remainder, -1)...)

	return urls, nil
}
