package chat

import (
	"regexp"
	"strings"

	"github.com/i474232898/weather-chat/internal/common"
)

// Rule names the branch of the resolver that produced a location.
type Rule string

const (
	RuleNone         Rule = "none"
	RuleExplicit     Rule = "explicit"
	RuleRelative     Rule = "relative"
	RuleFallback     Rule = "fallback"
	RuleContinuation Rule = "continuation"
)

// Resolution is the outcome of resolving one utterance.
type Resolution struct {
	Location string
	Rule     Rule
}

// Found reports whether a location was resolved.
func (r Resolution) Found() bool {
	return r.Location != ""
}

// Resolver decides which place an utterance is about. Each table is
// evaluated in order and the first matching pattern wins.
type Resolver struct {
	explicit []*regexp.Regexp
	relative []*regexp.Regexp
	keywords *regexp.Regexp
}

// NewResolver compiles the pattern tables.
func NewResolver() *Resolver {
	return &Resolver{
		explicit: []*regexp.Regexp{
			regexp.MustCompile(`(?i)weather (?:in|at|for) ([^?.,!]+)`),
			regexp.MustCompile(`(?i)(?:how about|what about|and|in) ([^?.,!]+)`),
			regexp.MustCompile(`(?i)(?:how's|what's|hows|whats) (?:it|the weather) (?:in|at|like in|like at) ([^?.,!]+)`),
			regexp.MustCompile(`(?i)(?:what is|tell me|show me) (?:the weather|temperature) (?:in|at|for) ([^?.,!]+)`),
		},
		relative: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:over|out) there`),
			regexp.MustCompile(`(?i)that location`),
			regexp.MustCompile(`(?i)that place`),
			regexp.MustCompile(`(?i)there now`),
			regexp.MustCompile(`(?i)the same place`),
			regexp.MustCompile(`(?i)that city`),
		},
		keywords: regexp.MustCompile(`(?i)(?:weather|temperature|rain|sunny|cloudy|cold|hot|warm|cool)`),
	}
}

// Resolve returns the location the utterance concerns. lc is updated when
// an explicit location is found, and when a relative reference has to fall
// back to the last weather message. fallback is the client's own location,
// empty when unknown.
func (r *Resolver) Resolve(utterance string, lc *LocationContext, transcript []Message, fallback string) Resolution {
	last, hasLast := lastWeatherMessage(transcript)

	for _, re := range r.explicit {
		m := re.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		loc := strings.TrimSpace(m[1])
		// "what about over there" names no place of its own.
		if loc == "" || r.isRelative(loc) {
			continue
		}
		lc.UpdateLocation(loc)
		return Resolution{Location: loc, Rule: RuleExplicit}
	}

	for _, re := range r.relative {
		if !re.MatchString(utterance) {
			continue
		}
		if lc.Current != "" {
			// Reusing the current location leaves the context untouched.
			return Resolution{Location: lc.Current, Rule: RuleRelative}
		}
		if hasLast {
			lc.UpdateLocation(last.Location)
			return Resolution{Location: last.Location, Rule: RuleRelative}
		}
	}

	if fallback != "" && common.HasAny(utterance, "weather") {
		return Resolution{Location: fallback, Rule: RuleFallback}
	}

	if hasLast && r.keywords.MatchString(utterance) {
		return Resolution{Location: last.Location, Rule: RuleContinuation}
	}

	return Resolution{Rule: RuleNone}
}

func (r *Resolver) isRelative(s string) bool {
	for _, re := range r.relative {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
