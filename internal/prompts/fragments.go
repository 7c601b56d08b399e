package prompts

import "strings"

// prompt groups fragments by section so every template emits them in the
// same order regardless of how it fills them.
type prompt struct {
	role        []string
	language    []string
	tone        []string
	custom      []string
	constraints []string
	metadata    []string
	content     string
	output      []string
}

func (p prompt) String() string {
	sections := [][]string{
		p.role,
		p.language,
		p.tone,
		p.custom,
		p.constraints,
		p.metadata,
		{p.content},
		p.output,
	}
	var parts []string
	for _, section := range sections {
		for _, fragment := range section {
			if strings.TrimSpace(fragment) == "" {
				continue
			}
			parts = append(parts, fragment)
		}
	}
	return strings.Join(parts, "\n\n")
}
