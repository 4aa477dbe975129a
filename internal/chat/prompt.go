package chat

import (
	"fmt"
	"strings"
)

const (
	recentLocationCount = 3
	historyMessageCount = 4
)

const promptInstructions = `Instructions:
1. Be specific about which location you're discussing
2. Compare with previous location when relevant
3. Keep responses conversational but brief (1-2 sentences)
4. Acknowledge location changes when they occur
5. Use the most recent weather data available`

// Compose flattens the session state into the single prompt handed to the
// completion provider. weatherSummary is empty when no weather was fetched
// this turn.
func Compose(lc LocationContext, entries []WeatherContextEntry, transcript []Message, weatherSummary, question string) string {
	current := lc.Current
	if current == "" {
		current = "Unknown"
	}
	previous := lc.Previous
	if previous == "" {
		previous = "None"
	}

	var b strings.Builder
	b.WriteString("You are a helpful weather assistant. Here's the detailed context:\n\n")
	b.WriteString("Location Context:\n")
	fmt.Fprintf(&b, "- Current Location: %s\n", current)
	fmt.Fprintf(&b, "- Previous Location: %s\n", previous)
	fmt.Fprintf(&b, "- Recent Locations: %s\n\n", strings.Join(recentLocations(entries, recentLocationCount), ", "))
	b.WriteString("Conversation History:\n")
	b.WriteString(renderHistory(tail(transcript, historyMessageCount)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Current Weather Data: %s\n\n", weatherSummary)
	fmt.Fprintf(&b, "User Question: %s\n\n", question)
	b.WriteString(promptInstructions)
	return b.String()
}

// recentLocations returns the last n remembered locations in entry order.
func recentLocations(entries []WeatherContextEntry, n int) []string {
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Location)
	}
	return out
}

func renderHistory(msgs []Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		switch {
		case m.Kind == KindWeather:
			if m.Weather == nil {
				lines = append(lines, "Location: "+m.Location)
				continue
			}
			w := m.Weather
			lines = append(lines, fmt.Sprintf("Location: %s\nWeather: %d°F (feels like %d°F), %s, Wind: %d mph",
				m.Location, w.Temperature, w.FeelsLike, w.Condition, w.WindSpeed))
		case m.Kind == KindUser:
			lines = append(lines, "Human: "+m.Text)
		default:
			lines = append(lines, "Assistant: "+m.Text)
		}
	}
	return strings.Join(lines, "\n")
}

func tail(msgs []Message, n int) []Message {
	if len(msgs) > n {
		return msgs[len(msgs)-n:]
	}
	return msgs
}
