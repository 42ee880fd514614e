package greeting

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	mcp "greeting/internal/mcp"
)

// UnknownLanguage is reported when no heuristic matches.
const UnknownLanguage = "Unknown"

type languageRule struct {
	name string
	re   *regexp.Regexp
}

var (
	jsLike     = regexp.MustCompile(`import\s+.*from|export\s+.*|const\s+.*=|let\s+.*=|function\s+.*\(`)
	tsMarkers  = regexp.MustCompile(`interface\s+|type\s+.*=|as\s+`)
	otherRules = []languageRule{
		{"Python", regexp.MustCompile(`def\s+.*:|import\s+.*:|class\s+.*:|if\s+__name__`)},
		{"PHP", regexp.MustCompile(`function\s+.*\(.*\)\s*\{|<\?php`)},
		{"Java", regexp.MustCompile(`public\s+class|import\s+java|System\.out\.println`)},
		{"C++", regexp.MustCompile(`#include|int\s+main|cout\s*<<`)},
		{"Rust", regexp.MustCompile(`fn\s+.*\(|use\s+std::|let\s+mut`)},
		{"Go", regexp.MustCompile(`func\s+.*\(|package\s+main|fmt\.Print`)},
	}
)

// DetectLanguage guesses the language of code. The checks are ordered and
// the first match wins.
func DetectLanguage(code string) string {
	if jsLike.MatchString(code) {
		if tsMarkers.MatchString(code) {
			return "TypeScript"
		}
		return "JavaScript"
	}
	for _, r := range otherRules {
		if r.re.MatchString(code) {
			return r.name
		}
	}
	return UnknownLanguage
}

const reviewTemplate = `You are an experienced senior developer. Analyse and review the following code thoroughly.

**Code under review:**
Language: %s

` + "```%s\n%s\n```" + `

**Checkpoints:**
- Readability and clarity
- Correctness and likely bugs
- Error handling
- Performance and efficiency
- Security issues
- Style and best practices
- Test coverage
- Documentation quality

Structure your feedback as follows:

### ✅ Strengths
- [Concrete things done well]

### ⚠️ Areas for Improvement
- [Problems and how to fix them]

### 🚨 Critical Issues
- [Security, performance or correctness problems, by priority]

### 💡 Suggestions
- [Better implementations or alternatives]

### 📊 Overall Assessment
- **Score**: /10
- **Key improvements**: [1-3 items]
- **Recommended actions**: [What to fix right away]

Keep the tone professional and friendly.`

func codeReviewPrompt() mcp.Descriptor {
	return mcp.Descriptor{
		Kind:        mcp.KindPrompt,
		Name:        "code-review",
		Description: "Prompt for a structured review of the given code.",
		Schema: mcp.Schema(
			mcp.StringParam("code", "Code to review"),
		),
		Handler: func(_ context.Context, args mcp.Args) (mcp.Result, error) {
			code := args.String("code")
			lang := DetectLanguage(code)
			fence := strings.ToLower(lang)
			if lang == UnknownLanguage {
				fence = ""
			}
			return mcp.Messages{{
				Role: mcp.RoleUser,
				Text: fmt.Sprintf(reviewTemplate, lang, fence, code),
			}}, nil
		},
	}
}
