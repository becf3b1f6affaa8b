package verdict

// Emphasis is the visual category a result is rendered with.
type Emphasis int

const (
	EmphasisDefault Emphasis = iota
	EmphasisSuccess
	EmphasisWarning
	EmphasisError
	EmphasisProgress
)

func (e Emphasis) String() string {
	switch e {
	case EmphasisSuccess:
		return "success"
	case EmphasisWarning:
		return "warning"
	case EmphasisError:
		return "error"
	case EmphasisProgress:
		return "progress"
	default:
		return "default"
	}
}

// Classify maps a result code or sentinel to its emphasis. It has no side effects.
func Classify(code Code) Emphasis {
	switch code {
	case CodeReady, CodeAC:
		return EmphasisSuccess
	case CodeWA:
		return EmphasisWarning
	case CodeRE, CodeCE, CodeSubmitFailed, CodeNoSelection, CodeUnavailable:
		return EmphasisError
	case CodeSubmitting, CodeGrading:
		return EmphasisProgress
	default:
		return EmphasisDefault
	}
}
