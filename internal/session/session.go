// Package session implements the per-user conversation that turns free-text
// chat into a confirmed restaurant addition.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lunchybot/lunchy/internal/storage"
	"github.com/lunchybot/lunchy/internal/venue"
)

// State identifies where a conversation is in the add flow.
type State int

const (
	// StateFindingRestaurant waits for a name to search for.
	StateFindingRestaurant State = iota
	// StateConfirmingRestaurant waits for yes/no on the top candidate.
	StateConfirmingRestaurant
	// StateExtendedConfirmation waits for a candidate number or "no".
	StateExtendedConfirmation
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateFindingRestaurant:
		return "finding"
	case StateConfirmingRestaurant:
		return "confirming"
	case StateExtendedConfirmation:
		return "extended-confirmation"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Replier sends reply text to a channel. Satisfied by the slack gateway.
type Replier interface {
	Send(ctx context.Context, channelID string, text string) error
}

// Reply texts.
const (
	msgLookupFailed = "Sorry, I couldn't find a restaurant nearby that matches (check your spelling or try a different name)."
	msgConfirm      = `Is this it? %s (%s). Type "@lunchy: yes (or no)"!`
	msgExtended     = "Dang! Is it one of these?\n%s\n(Let me know the number, e.g. \"@lunchy 3\")"
	msgStumped      = "Well, you've got me stumped. Try something else!"
	msgUsageHint    = "First time using a keyboard? Try replying with one of the numbers."
	msgStoreFailed  = "Err... looks like something went wrong. Try again?"
	msgDuplicate    = `Looks like we've already got that restaurant on the list! For a full list, type: "@lunchy list".`
	msgAdded        = "Great, %s has been added!"
)

// mentionPrefix matches a leading bot mention on a query, e.g. "<@U123>: ".
var mentionPrefix = regexp.MustCompile(`^<@\w+>:?\s*`)

// Session is the conversation state for a single user. All message handling
// runs under the session's mutex, so a user's messages are processed strictly
// in order; different users' sessions are independent.
type Session struct {
	userID    string
	userName  string
	channelID string

	store   storage.Store
	lookup  venue.Lookup
	replier Replier
	logger  *slog.Logger

	// destroyFunc removes this session from its registry. Idempotent.
	destroyFunc func()
	destroyed   atomic.Bool

	mu         sync.Mutex
	state      State
	candidates []venue.Venue
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Candidates returns the venues held for confirmation.
func (s *Session) Candidates() []venue.Venue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates
}

// handle processes one inbound message. It runs to completion before the next
// message for this user is accepted.
func (s *Session) handle(ctx context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(mentionPrefix.ReplaceAllString(strings.TrimSpace(text), ""))

	s.logger.Debug("handling message",
		slog.String("user_id", s.userID),
		slog.String("user", s.userName),
		slog.String("state", s.state.String()))

	// "list" works from any state and changes nothing.
	if strings.EqualFold(text, "list") {
		s.listRestaurants(ctx)
		return
	}

	switch s.state {
	case StateFindingRestaurant:
		s.findRestaurant(ctx, text)
	case StateConfirmingRestaurant:
		s.confirmRestaurant(ctx, text)
	case StateExtendedConfirmation:
		s.extendedConfirm(ctx, text)
	}
}

// findRestaurant searches for venues matching the text. On failure or an empty
// result the session stays put, so the next message retries the search.
func (s *Session) findRestaurant(ctx context.Context, query string) {
	venues, err := s.lookup.Search(ctx, query)
	if err != nil || len(venues) == 0 {
		if err != nil {
			s.logger.Warn("venue lookup failed",
				slog.String("query", query), slog.Any("error", err))
		}
		s.speak(ctx, msgLookupFailed)
		return
	}

	s.candidates = venues
	s.state = StateConfirmingRestaurant

	top := venues[0]
	s.logger.Info("restaurant found",
		slog.String("name", top.Name), slog.String("user", s.userName))
	s.speak(ctx, fmt.Sprintf(msgConfirm, top.Name, top.Address))
}

// confirmRestaurant handles yes/no on the top candidate. Anything else is
// ignored without a reply.
func (s *Session) confirmRestaurant(ctx context.Context, text string) {
	switch strings.ToLower(text) {
	case "yes":
		s.addRestaurant(ctx, s.candidates[0].Name)
	case "no":
		lines := make([]string, len(s.candidates))
		for i, v := range s.candidates {
			lines[i] = fmt.Sprintf("%d. %s (%s)", i+1, v.Name, v.Address)
		}
		s.state = StateExtendedConfirmation
		s.speak(ctx, fmt.Sprintf(msgExtended, strings.Join(lines, "\n")))
	}
}

// extendedConfirm handles a 1-based candidate number or a final "no".
func (s *Session) extendedConfirm(ctx context.Context, text string) {
	if strings.EqualFold(text, "no") {
		s.speak(ctx, msgStumped)
		s.destroy()
		return
	}

	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(s.candidates) {
		s.speak(ctx, msgUsageHint)
		return
	}

	s.addRestaurant(ctx, s.candidates[n-1].Name)
}

// addRestaurant runs the sequential add pipeline: existence check, branch,
// create, reply. Every outcome ends the session.
func (s *Session) addRestaurant(ctx context.Context, name string) {
	defer s.destroy()

	_, err := s.store.Get(ctx, name)
	switch {
	case err == nil:
		s.speak(ctx, msgDuplicate)
		return
	case !errors.Is(err, storage.ErrNotFound):
		s.logger.Error("restaurant existence check failed",
			slog.String("name", name), slog.Any("error", err))
		s.speak(ctx, msgStoreFailed)
		return
	}

	if err := s.store.Insert(ctx, &storage.Restaurant{Name: name}); err != nil {
		s.logger.Error("restaurant insert failed",
			slog.String("name", name), slog.Any("error", err))
		s.speak(ctx, msgStoreFailed)
		return
	}

	s.speak(ctx, fmt.Sprintf(msgAdded, name))
}

// listRestaurants replies with the sorted roster.
func (s *Session) listRestaurants(ctx context.Context) {
	restaurants, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("restaurant list failed", slog.Any("error", err))
		s.speak(ctx, msgStoreFailed)
		return
	}

	names := make([]string, len(restaurants))
	for i, r := range restaurants {
		names[i] = r.Name
	}
	sort.Strings(names)

	s.speak(ctx, strings.Join(names, ", "))
}

// speak replies to the session's channel, addressed to the user. A destroyed
// session stays silent: a lookup or store call finishing after the inactivity
// timer fired must not act on a dead session.
func (s *Session) speak(ctx context.Context, text string) {
	if s.destroyed.Load() {
		return
	}

	if err := s.replier.Send(ctx, s.channelID, "@"+s.userName+": "+text); err != nil {
		s.logger.Error("failed to send reply",
			slog.String("user", s.userName), slog.Any("error", err))
	}
}

// destroy removes the session from its registry. Safe to call more than once.
func (s *Session) destroy() {
	if s.destroyFunc != nil {
		s.destroyFunc()
	}
}
