package sentiment

// Category is one of the five display buckets for a compound score.
type Category string

const (
	VeryPositive Category = "Very Positive"
	Positive     Category = "Positive"
	Neutral      Category = "Neutral"
	Negative     Category = "Negative"
	VeryNegative Category = "Very Negative"
)

// Color is the display colour paired with a category.
type Color string

const (
	Green Color = "green"
	Gray  Color = "gray"
	Red   Color = "red"
)

const (
	strongThreshold = 0.5
	weakThreshold   = 0.05
)

var categoryEmoji = map[Category]string{
	VeryPositive: "🤗",
	Positive:     "😊",
	Neutral:      "😐",
	Negative:     "😕",
	VeryNegative: "😢",
}

var categoryColor = map[Category]Color{
	VeryPositive: Green,
	Positive:     Green,
	Neutral:      Gray,
	Negative:     Red,
	VeryNegative: Red,
}

// Bucket maps a compound score to its category. Boundaries belong to the
// more extreme bucket: 0.5 is Very Positive, -0.05 is Negative.
func Bucket(compound float64) Category {
	switch {
	case compound >= strongThreshold:
		return VeryPositive
	case compound >= weakThreshold:
		return Positive
	case compound <= -strongThreshold:
		return VeryNegative
	case compound <= -weakThreshold:
		return Negative
	default:
		return Neutral
	}
}

// Emoji returns the face shown next to a category.
func (c Category) Emoji() string {
	return categoryEmoji[c]
}

// Color returns the display colour of a category.
func (c Category) Color() Color {
	if color, ok := categoryColor[c]; ok {
		return color
	}
	return Gray
}

// Result is the sentiment attached to one assistant turn.
type Result struct {
	Scores   Scores   `json:"scores"`
	Category Category `json:"category"`
	Color    Color    `json:"color"`
	Emoji    string   `json:"emoji"`
}

// Compound is a shorthand for r.Scores.Compound.
func (r Result) Compound() float64 {
	return r.Scores.Compound
}

// Classify builds a Result from precomputed scores.
func Classify(scores Scores) Result {
	category := Bucket(scores.Compound)
	return Result{
		Scores:   scores,
		Category: category,
		Color:    category.Color(),
		Emoji:    category.Emoji(),
	}
}

// Analyze scores text and classifies it.
func Analyze(text string) Result {
	return Classify(PolarityScores(text))
}
