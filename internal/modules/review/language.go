package review

import "strings"

// LanguageUnknown is returned for extensions outside the language table.
const LanguageUnknown = "unknown"

var extensionToLanguage = map[string]string{
	"js":   "javascript",
	"jsx":  "javascript",
	"ts":   "typescript",
	"tsx":  "typescript",
	"py":   "python",
	"java": "java",
	"cpp":  "c++",
	"c":    "c",
	"go":   "go",
	"rs":   "rust",
}

// classifyLanguage maps a filename's extension to a source language label.
// Unrecognized extensions classify as LanguageUnknown rather than erroring;
// classification failure propagates as data.
func classifyLanguage(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return LanguageUnknown
	}
	ext := strings.ToLower(filename[idx+1:])
	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}
	return LanguageUnknown
}
