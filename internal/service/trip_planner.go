// README: Conversation orchestrator; turns one chat message into a reply and keeps the last trip per session.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"jeeny/internal/ai"
	"jeeny/internal/modules/location"
	"jeeny/internal/modules/pricing"
	"jeeny/internal/modules/quote"
	"jeeny/internal/modules/session"
	"jeeny/internal/observability"
)

var ErrEmptyMessage = errors.New("empty message")

// Resolver turns place text into a location.
type Resolver interface {
	Resolve(ctx context.Context, raw string, role location.Role) (location.Location, error)
}

// Planner quotes a trip and places a driver.
type Planner interface {
	Plan(ctx context.Context, start, end location.Location, class pricing.CarClass) (*quote.Plan, error)
}

// Reply is the assistant's answer to one message.
type Reply struct {
	Intent string
	Text   string
	// Plan is set whenever the message produced a new quote.
	Plan *quote.Plan
	// Warning carries a non-fatal problem, e.g. an unknown car class that
	// was replaced by the standard one.
	Warning string
}

type TripPlannerDeps struct {
	AI       ai.LLMProvider
	Resolver Resolver
	Quotes   Planner
	Sessions session.Store
	Log      logrus.FieldLogger
}

// TripPlanner orchestrates intent parsing, place resolution and quoting for
// one conversation turn. Conversation state lives in the session store.
type TripPlanner struct {
	ai       ai.LLMProvider
	resolver Resolver
	quotes   Planner
	sessions session.Store
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewTripPlanner(deps TripPlannerDeps) *TripPlanner {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &TripPlanner{
		ai:       deps.AI,
		resolver: deps.Resolver,
		quotes:   deps.Quotes,
		sessions: deps.Sessions,
		log:      deps.Log.WithField("component", "trip_planner"),
		now:      time.Now,
	}
}

// HandleMessage processes one user message for sessionID.
func (p *TripPlanner) HandleMessage(ctx context.Context, sessionID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	// 1. Load the last trip so follow-ups can edit it.
	last, hasLast, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	currentContext := map[string]string{}
	if hasLast {
		currentContext["last_start"] = last.Start.Name
		currentContext["last_end"] = last.End.Name
		currentContext["last_car_class"] = last.CarClass.ArabicName()
	}

	// 2. Parse intent.
	intent, err := p.ai.ParseUserIntent(ctx, message, currentContext)
	if err != nil {
		p.log.WithError(err).Error("intent parsing failed")
		return nil, fmt.Errorf("ai error: %w", err)
	}
	observability.ChatMessagesTotal.WithLabelValues(intent.Intent).Inc()

	// 3. Dispatch.
	var reply *Reply
	switch intent.Intent {
	case ai.IntentTrip:
		reply, err = p.handleTrip(ctx, sessionID, message, intent, last, hasLast)
	case ai.IntentChangeCar:
		reply, err = p.handleChangeCar(ctx, sessionID, message, intent, last, hasLast)
	case ai.IntentModifyLocation:
		reply, err = p.handleModifyLocation(ctx, sessionID, message, intent, last, hasLast)
	default:
		text := intent.Reply
		if text == "" {
			text = msgGreeting
		}
		reply = &Reply{Text: text}
	}
	if err != nil {
		return nil, err
	}
	reply.Intent = intent.Intent
	return reply, nil
}

func (p *TripPlanner) handleTrip(ctx context.Context, sessionID, message string, intent *ai.IntentResult, last session.Trip, hasLast bool) (*Reply, error) {
	startText, endText := deref(intent.StartLocation), deref(intent.Destination)
	// A destination-only follow-up keeps the last resolved start as is; its
	// display name may be a label that cannot be geocoded.
	reuseStart := startText == "" && hasLast
	if startText == "" && !reuseStart {
		return &Reply{Text: msgAskStart}, nil
	}
	if endText == "" {
		return &Reply{Text: msgAskDestination}, nil
	}

	class, warning, _ := p.chooseCarClass(message, intent.CarClass)

	start := last.Start
	if !reuseStart {
		loc, reply := p.resolve(ctx, startText, location.RoleStart)
		if reply != nil {
			return reply, nil
		}
		start = loc
	}
	end, reply := p.resolve(ctx, endText, location.RoleEnd)
	if reply != nil {
		return reply, nil
	}

	return p.planAndSave(ctx, sessionID, start, end, class, msgTripHeader, warning)
}

func (p *TripPlanner) handleChangeCar(ctx context.Context, sessionID, message string, intent *ai.IntentResult, last session.Trip, hasLast bool) (*Reply, error) {
	if !hasLast {
		return &Reply{Text: msgNoPreviousTrip}, nil
	}
	class, warning, ok := p.chooseCarClass(message, intent.CarClass)
	if !ok {
		return &Reply{Text: msgAskCarClass}, nil
	}
	if warning != "" {
		return &Reply{Text: warning + "\n" + msgAskCarClass, Warning: warning}, nil
	}
	if class == last.CarClass {
		return &Reply{Text: fmt.Sprintf(msgSameCarClass, class.ArabicName())}, nil
	}
	header := fmt.Sprintf(msgCarChangedHeader, last.CarClass.ArabicName(), class.ArabicName())
	return p.planAndSave(ctx, sessionID, last.Start, last.End, class, header, "")
}

func (p *TripPlanner) handleModifyLocation(ctx context.Context, sessionID, message string, intent *ai.IntentResult, last session.Trip, hasLast bool) (*Reply, error) {
	if !hasLast {
		return &Reply{Text: msgNoPreviousTrip}, nil
	}

	start, end := last.Start, last.End
	target := intent.EditTarget

	if target == ai.EditStart || target == ai.EditBoth {
		text := deref(intent.StartLocation)
		if text == "" {
			return &Reply{Text: msgAskStart}, nil
		}
		loc, reply := p.resolve(ctx, text, location.RoleStart)
		if reply != nil {
			return reply, nil
		}
		start = loc
	}
	if target == ai.EditEnd || target == ai.EditBoth {
		text := deref(intent.Destination)
		if text == "" {
			return &Reply{Text: msgAskDestination}, nil
		}
		loc, reply := p.resolve(ctx, text, location.RoleEnd)
		if reply != nil {
			return reply, nil
		}
		end = loc
	}

	class := last.CarClass
	if c, warning, ok := p.chooseCarClass(message, intent.CarClass); ok && warning == "" {
		class = c
	}
	return p.planAndSave(ctx, sessionID, start, end, class, msgLocationChangedHeader, "")
}

// resolve returns either the location or a reply explaining why the place
// could not be used. Unexpected errors are also turned into a reply.
func (p *TripPlanner) resolve(ctx context.Context, text string, role location.Role) (location.Location, *Reply) {
	loc, err := p.resolver.Resolve(ctx, text, role)
	switch {
	case err == nil:
		return loc, nil
	case errors.Is(err, location.ErrOutOfRegion):
		return location.Location{}, &Reply{Text: fmt.Sprintf(msgOutOfRegion, text)}
	default:
		p.log.WithFields(logrus.Fields{"place": text, "error": err}).Info("place not resolved")
		return location.Location{}, &Reply{Text: fmt.Sprintf(msgPlaceNotFound, text)}
	}
}

func (p *TripPlanner) planAndSave(ctx context.Context, sessionID string, start, end location.Location, class pricing.CarClass, header, warning string) (*Reply, error) {
	plan, err := p.quotes.Plan(ctx, start, end, class)
	if errors.Is(err, quote.ErrNoRouteFound) {
		return &Reply{Text: fmt.Sprintf(msgNoRoute, start.Name, end.Name)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}

	trip := session.Trip{Start: start, End: end, CarClass: class, UpdatedAt: p.now().UTC()}
	if err := p.sessions.Save(ctx, sessionID, trip); err != nil {
		p.log.WithError(err).Warn("failed to save session")
	}

	text := FormatPlan(header, plan)
	if warning != "" {
		text = warning + "\n\n" + text
	}
	return &Reply{Text: text, Plan: plan, Warning: warning}, nil
}

// chooseCarClass prefers keywords in the message, then the model's
// extraction. ok is false when no class was mentioned. An unrecognised
// class from the model yields Standard and a warning.
func (p *TripPlanner) chooseCarClass(message string, extracted *string) (class pricing.CarClass, warning string, ok bool) {
	if c, found := pricing.DetectCarClass(message); found {
		return c, "", true
	}
	name := deref(extracted)
	if name == "" {
		return pricing.CarClassStandard, "", false
	}
	if c, found := pricing.DetectCarClass(name); found {
		return c, "", true
	}
	c, err := pricing.ResolveClass(name, p.log)
	if err != nil {
		return c, fmt.Sprintf(msgUnknownCarClass, name), true
	}
	return c, "", true
}

// EndSession forgets the last trip of sessionID.
func (p *TripPlanner) EndSession(ctx context.Context, sessionID string) error {
	if err := p.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
