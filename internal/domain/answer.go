package domain

// Answer is a submitted response to one question. The concrete type must
// match the question's declared type to earn credit; nil means unanswered.
type Answer interface {
	answer()
}

// SingleAnswer picks one option of a single-choice question.
type SingleAnswer struct {
	Index int
}

// MultipleAnswer picks any number of options of a multiple-choice question.
type MultipleAnswer struct {
	Indexes []int
}

// BooleanAnswer picks one of the two options of a true/false question.
type BooleanAnswer struct {
	Index int
}

func (SingleAnswer) answer()   {}
func (MultipleAnswer) answer() {}
func (BooleanAnswer) answer()  {}
