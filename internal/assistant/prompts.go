package assistant

import "fmt"

// Insight modes for a trip stop.
const (
	ModeAbout  = "about"
	ModeNearby = "nearby"
)

const answerStyle = "Answer in Traditional Chinese, in at most five short paragraphs."

// QuestionPrompt wraps a free-form traveller question.
func QuestionPrompt(question string) string {
	return fmt.Sprintf("You are a travel assistant for a map collection app. %s\n\nQuestion: %s", answerStyle, question)
}

// PlacePrompt asks about the place called name at the given coordinates.
// Coordinates are authoritative; the name is only a hint.
func PlacePrompt(mode, name string, lat, lng float64) string {
	place := fmt.Sprintf("the place at latitude %.6f, longitude %.6f", lat, lng)
	if name != "" {
		place = fmt.Sprintf("%q (%s)", name, place)
	}

	switch mode {
	case ModeNearby:
		return fmt.Sprintf("List interesting spots, food and sights within walking distance of %s. %s", place, answerStyle)
	default:
		return fmt.Sprintf("Introduce %s: what it is, its history and what visitors should know. %s", place, answerStyle)
	}
}
