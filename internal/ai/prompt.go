package ai

import (
	_ "embed"
	"strings"
)

//go:embed prompt.md
var promptTemplate string

// BuildPrompt renders the judgment prompt shared by every provider.
func BuildPrompt(req *JudgeRequest) string {
	jobContext := strings.TrimSpace(req.JobContext)
	if jobContext == "" {
		jobContext = "none"
	}

	replacer := strings.NewReplacer(
		"{{BUCKET}}", req.Bucket.String(),
		"{{JOB_SKILLS}}", bulletList(req.JobSkills),
		"{{CANDIDATE_SKILLS}}", bulletList(req.CandidateSkills),
		"{{JOB_CONTEXT}}", jobContext,
	)
	return replacer.Replace(promptTemplate)
}

func bulletList(values []string) string {
	if len(values) == 0 {
		return "- none"
	}
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(v))
	}
	return b.String()
}
