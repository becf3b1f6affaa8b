package attempt

import (
	"strings"

	appErr "dvorak/pkg/errors"
)

// Language is one of the closed set of languages the judge accepts.
type Language string

const (
	LanguagePython Language = "python"
	LanguageCPP    Language = "cpp"
)

var languages = []Language{LanguagePython, LanguageCPP}

// Languages lists the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// ParseLanguage accepts a language id case-insensitively; "c++" is an alias of cpp.
func ParseLanguage(raw string) (Language, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "c++" {
		value = string(LanguageCPP)
	}
	for _, lang := range languages {
		if string(lang) == value {
			return lang, nil
		}
	}
	return "", appErr.Newf(appErr.LanguageNotSupported, "unsupported language %q", raw).WithDetail("language", raw)
}

// Valid reports whether l is in the supported set.
func (l Language) Valid() bool {
	for _, lang := range languages {
		if lang == l {
			return true
		}
	}
	return false
}

// DisplayName is the human readable language label.
func (l Language) DisplayName() string {
	switch l {
	case LanguagePython:
		return "Python"
	case LanguageCPP:
		return "C++"
	default:
		return string(l)
	}
}

const (
	pythonTemplate = "print(\"Hello, Dvorak!\")\n"
	cppTemplate    = "#include <bits/stdc++.h>\nusing namespace std;\nint main(){ cout << \"Hello, Dvorak!\\n\"; }"
)

// Template returns the starter code shown when a selection is established.
func Template(l Language) string {
	switch l {
	case LanguageCPP:
		return cppTemplate
	default:
		return pythonTemplate
	}
}
