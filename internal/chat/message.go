package chat

import (
	"time"

	"github.com/i474232898/weather-chat/internal/weather"
)

// Kind discriminates transcript entries.
type Kind string

const (
	KindUser      Kind = "user"
	KindAssistant Kind = "assistant"
	KindWeather   Kind = "weather"
)

// Message is one transcript entry. User and assistant messages carry Text;
// weather messages carry Weather and the Location it refers to.
type Message struct {
	Kind      Kind            `json:"kind"`
	Text      string          `json:"text,omitempty"`
	Location  string          `json:"location,omitempty"`
	Weather   *weather.Record `json:"weather,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func UserMessage(text string) Message {
	return Message{Kind: KindUser, Text: text, CreatedAt: time.Now().UTC()}
}

func AssistantMessage(text string) Message {
	return Message{Kind: KindAssistant, Text: text, CreatedAt: time.Now().UTC()}
}

func WeatherMessage(location string, rec weather.Record) Message {
	return Message{Kind: KindWeather, Location: location, Weather: &rec, CreatedAt: time.Now().UTC()}
}

// lastWeatherMessage returns the newest weather message that names a location.
func lastWeatherMessage(transcript []Message) (Message, bool) {
	for i := len(transcript) - 1; i >= 0; i-- {
		m := transcript[i]
		if m.Kind == KindWeather && m.Location != "" {
			return m, true
		}
	}
	return Message{}, false
}
