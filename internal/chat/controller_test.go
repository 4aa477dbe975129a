package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-chat/internal/weather"
)

type fakeWeather struct {
	rec   weather.Record
	err   error
	calls []string
}

func (f *fakeWeather) Name() string { return "fake" }

func (f *fakeWeather) Current(_ context.Context, place string) (weather.Record, error) {
	f.calls = append(f.calls, place)
	if f.err != nil {
		return weather.Record{}, f.err
	}
	return f.rec, nil
}

type fakeCompleter struct {
	text    string
	err     error
	prompts []string

	// started and release make Complete block until the test lets it go.
	started chan struct{}
	release chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.text, f.err
}

var tokyoRecord = weather.Record{Temperature: 72, FeelsLike: 70, Condition: "Clear", Humidity: 50, WindSpeed: 5, Icon: "01d"}

func TestSubmitEndToEnd(t *testing.T) {
	w := &fakeWeather{rec: tokyoRecord}
	c := &fakeCompleter{text: "It's clear and pleasant there."}
	ctrl := NewController(w, c)
	s := NewSession("s1")

	res, err := ctrl.Submit(context.Background(), s, "What's the weather in Tokyo?")
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, StateWeatherFetched, res.WeatherState)
	assert.Equal(t, "Tokyo", res.Location)
	assert.Equal(t, []string{"Tokyo"}, w.calls)

	snap := s.Snapshot()
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, KindUser, snap.Messages[0].Kind)
	assert.Equal(t, KindWeather, snap.Messages[1].Kind)
	assert.Equal(t, 72, snap.Messages[1].Weather.Temperature)
	assert.Equal(t, "Tokyo", snap.Messages[1].Location)
	assert.Equal(t, KindAssistant, snap.Messages[2].Kind)
	assert.Equal(t, "It's clear and pleasant there.", snap.Messages[2].Text)
	assert.Equal(t, snap.Messages, res.Messages)

	assert.Equal(t, "Tokyo", snap.Context.Current)
	require.Len(t, snap.WeatherContext, 1)
	assert.Equal(t, "Tokyo", snap.WeatherContext[0].Location)
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.Busy)

	require.Len(t, c.prompts, 1)
	assert.Contains(t, c.prompts[0], "- Current Location: Tokyo\n")
	assert.Contains(t, c.prompts[0], "Current Weather Data: "+tokyoRecord.Summary("Tokyo"))
	assert.Contains(t, c.prompts[0], "Human: What's the weather in Tokyo?\n")
	assert.Contains(t, c.prompts[0], "Location: Tokyo\nWeather: 72°F")
}

func TestSubmitWeatherFailureContinues(t *testing.T) {
	w := &fakeWeather{err: fmt.Errorf("%w: %q", weather.ErrLocationNotFound, "Atlantis")}
	c := &fakeCompleter{text: "I couldn't find that place."}
	ctrl := NewController(w, c)
	s := NewSession("s1")

	res, err := ctrl.Submit(context.Background(), s, "weather in Atlantis")
	require.NoError(t, err)
	assert.Equal(t, StateWeatherFailed, res.WeatherState)
	assert.Equal(t, StateDone, res.State)

	snap := s.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, KindUser, snap.Messages[0].Kind)
	assert.Equal(t, KindAssistant, snap.Messages[1].Kind)
	assert.Empty(t, snap.WeatherContext)

	require.Len(t, c.prompts, 1)
	assert.Contains(t, c.prompts[0], "Current Weather Data: \n")
}

func TestSubmitWithoutLocationSkipsWeather(t *testing.T) {
	w := &fakeWeather{rec: tokyoRecord}
	c := &fakeCompleter{text: "Hello!"}
	ctrl := NewController(w, c)
	s := NewSession("s1")

	res, err := ctrl.Submit(context.Background(), s, "hello")
	require.NoError(t, err)
	assert.Equal(t, StateWeatherSkipped, res.WeatherState)
	assert.Empty(t, w.calls)
	assert.Len(t, res.Messages, 2)
}

func TestSubmitEmptyCompletion(t *testing.T) {
	ctrl := NewController(&fakeWeather{}, &fakeCompleter{text: "  "})
	s := NewSession("s1")

	res, err := ctrl.Submit(context.Background(), s, "hi")
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, NoResponseText, res.Messages[len(res.Messages)-1].Text)
}

func TestSubmitCompletionFailure(t *testing.T) {
	ctrl := NewController(&fakeWeather{}, &fakeCompleter{err: errors.New("status 500")})
	s := NewSession("s1")

	res, err := ctrl.Submit(context.Background(), s, "hi")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, ApologyText, res.Messages[len(res.Messages)-1].Text)
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Busy())
}

func TestSubmitRejectsBlankInput(t *testing.T) {
	ctrl := NewController(&fakeWeather{}, &fakeCompleter{})
	s := NewSession("s1")

	_, err := ctrl.Submit(context.Background(), s, "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, s.Snapshot().Messages)
}

func TestSubmitWhileBusyIsNoop(t *testing.T) {
	c := &fakeCompleter{
		text:    "done",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	ctrl := NewController(&fakeWeather{rec: tokyoRecord}, c)
	s := NewSession("s1")

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background(), s, "weather in Tokyo")
		done <- err
	}()

	<-c.started
	before := len(s.Snapshot().Messages)
	assert.True(t, s.Busy())
	assert.Equal(t, StateAwaitingCompletion, s.State())

	_, err := ctrl.Submit(context.Background(), s, "weather in Paris")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, s.Snapshot().Messages, before)

	close(c.release)
	require.NoError(t, <-done)
	assert.Len(t, s.Snapshot().Messages, before+1)
	assert.False(t, s.Busy())
}

func TestSubmitFollowUpUsesContext(t *testing.T) {
	w := &fakeWeather{rec: tokyoRecord}
	c := &fakeCompleter{text: "ok"}
	ctrl := NewController(w, c)
	s := NewSession("s1")

	_, err := ctrl.Submit(context.Background(), s, "weather in Berlin")
	require.NoError(t, err)
	res, err := ctrl.Submit(context.Background(), s, "is it cold there")
	require.NoError(t, err)

	assert.Equal(t, RuleContinuation, res.Resolution.Rule)
	assert.Equal(t, "Berlin", res.Location)
	assert.Equal(t, []string{"Berlin", "Berlin"}, w.calls)
	// Same location again: still a single remembered entry.
	assert.Len(t, s.Snapshot().WeatherContext, 1)
}

func TestSetFallbackLocation(t *testing.T) {
	w := &fakeWeather{rec: tokyoRecord}
	ctrl := NewController(w, &fakeCompleter{text: "ok"})
	s := NewSession("s1")
	s.SetFallbackLocation(" Austin ", "Texas")

	res, err := ctrl.Submit(context.Background(), s, "how's the weather today")
	require.NoError(t, err)
	assert.Equal(t, RuleFallback, res.Resolution.Rule)
	assert.Equal(t, []string{"Austin, Texas"}, w.calls)
}
