package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-chat/internal/completion"
	"github.com/i474232898/weather-chat/internal/weather"
)

const (
	NoResponseText = "No response from AI"
	ApologyText    = "Sorry, I encountered an error fetching weather data. Please try again."
)

var (
	// ErrBusy is returned when a turn is already in flight for the session.
	ErrBusy = errors.New("a message is already being processed")
	// ErrEmptyInput is returned for blank submissions.
	ErrEmptyInput = errors.New("message is empty")
)

// TurnResult describes one completed turn.
type TurnResult struct {
	State        State      `json:"state"`
	WeatherState State      `json:"weatherState"`
	Resolution   Resolution `json:"-"`
	Location     string     `json:"location,omitempty"`
	Messages     []Message  `json:"messages"`
}

// Controller runs the request/response cycle of a session:
// resolve location, fetch weather, compose prompt, complete, record reply.
type Controller struct {
	resolver  *Resolver
	weather   weather.Client
	completer completion.Completer
}

func NewController(w weather.Client, c completion.Completer) *Controller {
	return &Controller{
		resolver:  NewResolver(),
		weather:   w,
		completer: c,
	}
}

// Submit processes one utterance. A submission while another turn is in
// flight for the same session is rejected with ErrBusy and changes nothing.
// Weather failures never abort the turn; completion failures end it with an
// apology message.
func (c *Controller) Submit(ctx context.Context, s *Session, input string) (TurnResult, error) {
	if strings.TrimSpace(input) == "" {
		return TurnResult{}, ErrEmptyInput
	}
	if !s.busy.CompareAndSwap(false, true) {
		return TurnResult{}, ErrBusy
	}
	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		s.Touch()
		s.busy.Store(false)
	}()

	start := s.transcriptLen()
	s.setState(StateSubmitting)
	s.appendMessage(UserMessage(input))

	s.mu.Lock()
	res := c.resolver.Resolve(input, &s.location, s.transcript, s.fallback)
	if res.Found() {
		s.state = StateLocationResolved
	} else {
		s.state = StateNoLocation
	}
	s.mu.Unlock()

	logger := log.With().Str("session", s.ID).Logger()
	logger.Debug().Str("rule", string(res.Rule)).Str("location", res.Location).Msg("location resolved")

	weatherState := StateWeatherSkipped
	summary := ""
	if res.Found() {
		rec, err := c.weather.Current(ctx, res.Location)
		if err != nil {
			weatherState = StateWeatherFailed
			logger.Warn().Err(err).Str("location", res.Location).Str("provider", c.weather.Name()).Msg("weather fetch failed")
		} else {
			weatherState = StateWeatherFetched
			summary = rec.Summary(res.Location)
			s.mu.Lock()
			s.transcript = append(s.transcript, WeatherMessage(res.Location, rec))
			s.weather.RecordWeather(res.Location, rec)
			s.mu.Unlock()
		}
	}
	s.setState(weatherState)

	s.mu.Lock()
	s.state = StateComposing
	prompt := Compose(s.location, s.weather.Entries(), s.transcript, summary, input)
	s.state = StateAwaitingCompletion
	s.mu.Unlock()

	final := StateDone
	text, err := c.completer.Complete(ctx, prompt)
	switch {
	case err != nil:
		final = StateFailed
		text = ApologyText
		logger.Error().Err(err).Msg("completion failed")
	case strings.TrimSpace(text) == "":
		text = NoResponseText
	}
	s.appendMessage(AssistantMessage(text))
	s.setState(final)

	return TurnResult{
		State:        final,
		WeatherState: weatherState,
		Resolution:   res,
		Location:     res.Location,
		Messages:     s.messagesSince(start),
	}, nil
}
