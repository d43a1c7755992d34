package evaluate

import "strings"

// AnswerType selects the matching strategy used to grade a response.
type AnswerType int

const (
	Exact AnswerType = iota
	Numeric
	Contains
	Semantic
)

var answerTypeNames = map[AnswerType]string{
	Exact:    "exact",
	Numeric:  "numeric",
	Contains: "contains",
	Semantic: "semantic",
}

// ParseAnswerType maps a declared answer type to a strategy. Unrecognized
// names grade as Exact.
func ParseAnswerType(name string) AnswerType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "numeric":
		return Numeric
	case "contains":
		return Contains
	case "semantic":
		return Semantic
	default:
		return Exact
	}
}

// KnownAnswerType reports whether name is one of the declared answer types.
func KnownAnswerType(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, known := range answerTypeNames {
		if known == name {
			return true
		}
	}
	return false
}

func (t AnswerType) String() string {
	if name, ok := answerTypeNames[t]; ok {
		return name
	}
	return answerTypeNames[Exact]
}
