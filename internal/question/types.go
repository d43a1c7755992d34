package question

// Spec is a test suite loaded from JSON or YAML.
type Spec struct {
	Version int    `json:"version" yaml:"version"`
	Cases   []Case `json:"cases" yaml:"cases"`
}

// Case is one test item graded against its expected answer.
type Case struct {
	ID             string `json:"id" yaml:"id"`
	Question       string `json:"question" yaml:"question"`
	Category       string `json:"category" yaml:"category"`
	Difficulty     int    `json:"difficulty" yaml:"difficulty"`
	ExpectedAnswer string `json:"expected_answer" yaml:"expected_answer"`
	AnswerType     string `json:"answer_type" yaml:"answer_type"`
}
