package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeeny/internal/ai"
	"jeeny/internal/modules/location"
	"jeeny/internal/modules/pricing"
	"jeeny/internal/modules/quote"
	"jeeny/internal/modules/session"
	"jeeny/internal/types"
)

type stubAI struct {
	result  *ai.IntentResult
	err     error
	lastCtx map[string]string
}

func (s *stubAI) ParseUserIntent(_ context.Context, _ string, currentContext map[string]string) (*ai.IntentResult, error) {
	s.lastCtx = currentContext
	return s.result, s.err
}

func (s *stubAI) MatchPlace(context.Context, string, []string) (string, error) {
	return ai.NoMatch, nil
}

type stubResolver struct {
	places map[string]types.Point
	errs   map[string]error
}

func (s *stubResolver) Resolve(_ context.Context, raw string, _ location.Role) (location.Location, error) {
	if err, ok := s.errs[raw]; ok {
		return location.Location{}, err
	}
	p, ok := s.places[raw]
	if !ok {
		return location.Location{}, location.ErrGeocodingFailed
	}
	return location.Location{Name: raw, Point: p}, nil
}

type stubPlanner struct {
	err   error
	calls []pricing.CarClass
}

func (s *stubPlanner) Plan(_ context.Context, start, end location.Location, class pricing.CarClass) (*quote.Plan, error) {
	s.calls = append(s.calls, class)
	if s.err != nil {
		return nil, s.err
	}
	return &quote.Plan{
		Start: start,
		End:   end,
		Quote: quote.TripQuote{
			DistanceText: "10 كم",
			DurationText: "20 دقيقة",
			DistanceKm:   10,
			DurationMin:  20,
			Cost:         types.MoneyFromFloat(4.0*class.Multiplier(), "JOD"),
			CarClass:     class,
		},
		Driver: quote.DriverPlacement{OffsetDistanceM: 200, ETAMin: 1, CarClass: class},
	}, nil
}

func strPtr(s string) *string { return &s }

func newPlanner(t *testing.T, a *stubAI, q *stubPlanner) (*TripPlanner, *session.MemoryStore) {
	t.Helper()
	log, _ := test.NewNullLogger()
	store := session.NewMemoryStore()
	r := &stubResolver{
		places: map[string]types.Point{
			"الدوار السابع": {Lat: 31.95, Lng: 35.86},
			"العبدلي":       {Lat: 31.96, Lng: 35.91},
			"الجامعة":       {Lat: 32.01, Lng: 35.87},
		},
		errs: map[string]error{
			"القدس": location.ErrOutOfRegion,
		},
	}
	return NewTripPlanner(TripPlannerDeps{AI: a, Resolver: r, Quotes: q, Sessions: store, Log: log}), store
}

func tripIntent(start, end string, class *string) *ai.IntentResult {
	return &ai.IntentResult{Intent: ai.IntentTrip, StartLocation: strPtr(start), Destination: strPtr(end), CarClass: class}
}

func TestHandleMessage_Trip(t *testing.T) {
	a := &stubAI{result: tripIntent("الدوار السابع", "العبدلي", nil)}
	q := &stubPlanner{}
	p, store := newPlanner(t, a, q)

	reply, err := p.HandleMessage(context.Background(), "s1", "بدي من الدوار السابع للعبدلي")
	require.NoError(t, err)
	require.NotNil(t, reply.Plan)
	assert.Equal(t, ai.IntentTrip, reply.Intent)
	assert.Equal(t, pricing.CarClassStandard, reply.Plan.Quote.CarClass)
	assert.Contains(t, reply.Text, "4.00 دينار")
	assert.Contains(t, reply.Text, "الدوار السابع")

	trip, ok, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "العبدلي", trip.End.Name)
	assert.False(t, trip.UpdatedAt.IsZero())
}

func TestHandleMessage_TripClassFromMessageWins(t *testing.T) {
	a := &stubAI{result: tripIntent("الدوار السابع", "العبدلي", strPtr("taxi"))}
	q := &stubPlanner{}
	p, _ := newPlanner(t, a, q)

	reply, err := p.HandleMessage(context.Background(), "s1", "بدي سيارة VIP من الدوار السابع للعبدلي")
	require.NoError(t, err)
	assert.Equal(t, []pricing.CarClass{pricing.CarClassVIP}, q.calls)
	assert.Contains(t, reply.Text, "6.00 دينار")
}

func TestHandleMessage_TripUnknownClassDegrades(t *testing.T) {
	a := &stubAI{result: tripIntent("الدوار السابع", "العبدلي", strPtr("Spaceship"))}
	q := &stubPlanner{}
	p, _ := newPlanner(t, a, q)

	reply, err := p.HandleMessage(context.Background(), "s1", "من الدوار السابع للعبدلي")
	require.NoError(t, err)
	assert.Equal(t, []pricing.CarClass{pricing.CarClassStandard}, q.calls)
	assert.NotEmpty(t, reply.Warning)
	assert.Contains(t, reply.Text, "Spaceship")
	require.NotNil(t, reply.Plan)
}

func TestHandleMessage_TripMissingParts(t *testing.T) {
	q := &stubPlanner{}

	a := &stubAI{result: &ai.IntentResult{Intent: ai.IntentTrip, Destination: strPtr("العبدلي")}}
	p, _ := newPlanner(t, a, q)
	reply, err := p.HandleMessage(context.Background(), "s1", "بدي أروح العبدلي")
	require.NoError(t, err)
	assert.Equal(t, msgAskStart, reply.Text)

	a.result = &ai.IntentResult{Intent: ai.IntentTrip, StartLocation: strPtr("العبدلي")}
	reply, err = p.HandleMessage(context.Background(), "s1", "أنا بالعبدلي")
	require.NoError(t, err)
	assert.Equal(t, msgAskDestination, reply.Text)
	assert.Empty(t, q.calls)
}

func TestHandleMessage_TripReusesLastStart(t *testing.T) {
	a := &stubAI{result: tripIntent("الدوار السابع", "العبدلي", nil)}
	q := &stubPlanner{}
	p, _ := newPlanner(t, a, q)
	ctx := context.Background()

	_, err := p.HandleMessage(ctx, "s1", "من الدوار السابع للعبدلي")
	require.NoError(t, err)

	a.result = &ai.IntentResult{Intent: ai.IntentTrip, Destination: strPtr("الجامعة")}
	reply, err := p.HandleMessage(ctx, "s1", "وبعدين عالجامعة")
	require.NoError(t, err)
	require.NotNil(t, reply.Plan)
	assert.Equal(t, "الدوار السابع", reply.Plan.Start.Name)
	assert.Equal(t, "الجامعة", reply.Plan.End.Name)
	assert.Equal(t, "الدوار السابع", a.lastCtx["last_start"])
}

func TestHandleMessage_TripReusesCoordinateStart(t *testing.T) {
	a := &stubAI{result: &ai.IntentResult{Intent: ai.IntentTrip, Destination: strPtr("العبدلي")}}
	q := &stubPlanner{}
	p, store := newPlanner(t, a, q)
	ctx := context.Background()

	pinned := location.Location{Name: "الموقع المحدد", Point: types.Point{Lat: 31.9566, Lng: 35.9457}}
	require.NoError(t, store.Save(ctx, "s1", session.Trip{
		Start:    pinned,
		End:      location.Location{Name: "الجامعة", Point: types.Point{Lat: 32.01, Lng: 35.87}},
		CarClass: pricing.CarClassTaxi,
	}))

	reply, err := p.HandleMessage(ctx, "s1", "طيب خذني عالعبدلي")
	require.NoError(t, err)
	require.NotNil(t, reply.Plan)
	assert.Equal(t, pinned, reply.Plan.Start)
	assert.Equal(t, "العبدلي", reply.Plan.End.Name)

	trip, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pinned.Point, trip.Start.Point)
}

func TestEndSession(t *testing.T) {
	a := &stubAI{result: tripIntent("الدوار السابع", "العبدلي", nil)}
	p, store := newPlanner(t, a, &stubPlanner{})
	ctx := context.Background()

	_, err := p.HandleMessage(ctx, "s1", "من الدوار السابع للعبدلي")
	require.NoError(t, err)

	require.NoError(t, p.EndSession(ctx, "s1"))
	_, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	// A destination-only message after the session ended asks for the start.
	a.result = &ai.IntentResult{Intent: ai.IntentTrip, Destination: strPtr("الجامعة")}
	reply, err := p.HandleMessage(ctx, "s1", "عالجامعة")
	require.NoError(t, err)
	assert.Equal(t, msgAskStart, reply.Text)
	assert.Nil(t, reply.Plan)
}

func TestHandleMessage_PlaceErrorsBecomeReplies(t *testing.T) {
	q := &stubPlanner{}

	a := &stubAI{result: tripIntent("الدوار السابع", "القدس", nil)}
	p, store := newPlanner(t, a, q)
	reply, err := p.HandleMessage(context.Background(), "s1", "من الدوار السابع للقدس")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "برا منطقة الخدمة")
	assert.Nil(t, reply.Plan)

	a.result = tripIntent("مكان غريب", "العبدلي", nil)
	reply, err = p.HandleMessage(context.Background(), "s1", "من مكان غريب للعبدلي")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "مكان غريب")
	assert.Empty(t, q.calls)

	_, ok, _ := store.Get(context.Background(), "s1")
	assert.False(t, ok)
}

func TestHandleMessage_NoRoute(t *testing.T) {
	a := &stubAI{result: tripIntent("الدوار السابع", "العبدلي", nil)}
	q := &stubPlanner{err: quote.ErrNoRouteFound}
	p, _ := newPlanner(t, a, q)

	reply, err := p.HandleMessage(context.Background(), "s1", "من الدوار السابع للعبدلي")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "ما لقيت طريق")
	assert.Nil(t, reply.Plan)
}

func TestHandleMessage_PlannerFailure(t *testing.T) {
	a := &stubAI{result: tripIntent("الدوار السابع", "العبدلي", nil)}
	q := &stubPlanner{err: errors.New("maps down")}
	p, _ := newPlanner(t, a, q)

	_, err := p.HandleMessage(context.Background(), "s1", "من الدوار السابع للعبدلي")
	require.Error(t, err)
}

func TestHandleMessage_ChangeCar(t *testing.T) {
	a := &stubAI{result: tripIntent("الدوار السابع", "العبدلي", nil)}
	q := &stubPlanner{}
	p, store := newPlanner(t, a, q)
	ctx := context.Background()

	_, err := p.HandleMessage(ctx, "s1", "من الدوار السابع للعبدلي")
	require.NoError(t, err)

	a.result = &ai.IntentResult{Intent: ai.IntentChangeCar, CarClass: strPtr("عائلية")}
	reply, err := p.HandleMessage(ctx, "s1", "غيرها لعائلية")
	require.NoError(t, err)
	require.NotNil(t, reply.Plan)
	assert.Equal(t, pricing.CarClassFamily, reply.Plan.Quote.CarClass)
	assert.Equal(t, "العبدلي", reply.Plan.End.Name)

	trip, _, _ := store.Get(ctx, "s1")
	assert.Equal(t, pricing.CarClassFamily, trip.CarClass)

	reply, err = p.HandleMessage(ctx, "s1", "بدي عائلية")
	require.NoError(t, err)
	assert.Nil(t, reply.Plan)
	assert.Len(t, q.calls, 2)
}

func TestHandleMessage_ChangeCarWithoutTrip(t *testing.T) {
	a := &stubAI{result: &ai.IntentResult{Intent: ai.IntentChangeCar, CarClass: strPtr("vip")}}
	q := &stubPlanner{}
	p, _ := newPlanner(t, a, q)

	reply, err := p.HandleMessage(context.Background(), "s1", "بدي VIP")
	require.NoError(t, err)
	assert.Equal(t, msgNoPreviousTrip, reply.Text)
	assert.Empty(t, q.calls)
}

func TestHandleMessage_ModifyLocation(t *testing.T) {
	a := &stubAI{result: tripIntent("الدوار السابع", "العبدلي", strPtr("تاكسي"))}
	q := &stubPlanner{}
	p, _ := newPlanner(t, a, q)
	ctx := context.Background()

	_, err := p.HandleMessage(ctx, "s1", "تاكسي من الدوار السابع للعبدلي")
	require.NoError(t, err)

	a.result = &ai.IntentResult{Intent: ai.IntentModifyLocation, EditTarget: ai.EditEnd, Destination: strPtr("الجامعة")}
	reply, err := p.HandleMessage(ctx, "s1", "لا خليها عالجامعة")
	require.NoError(t, err)
	require.NotNil(t, reply.Plan)
	assert.Equal(t, "الدوار السابع", reply.Plan.Start.Name)
	assert.Equal(t, "الجامعة", reply.Plan.End.Name)
	assert.Equal(t, pricing.CarClassTaxi, reply.Plan.Quote.CarClass)
}

func TestHandleMessage_Chat(t *testing.T) {
	a := &stubAI{result: &ai.IntentResult{Intent: ai.IntentChat, Reply: "هلا فيك"}}
	p, _ := newPlanner(t, a, &stubPlanner{})

	reply, err := p.HandleMessage(context.Background(), "s1", "مرحبا")
	require.NoError(t, err)
	assert.Equal(t, "هلا فيك", reply.Text)
	assert.Equal(t, ai.IntentChat, reply.Intent)

	a.result = &ai.IntentResult{Intent: ai.IntentChat}
	reply, err = p.HandleMessage(context.Background(), "s1", "؟")
	require.NoError(t, err)
	assert.Equal(t, msgGreeting, reply.Text)
}

func TestHandleMessage_Errors(t *testing.T) {
	a := &stubAI{err: errors.New("quota")}
	p, _ := newPlanner(t, a, &stubPlanner{})

	_, err := p.HandleMessage(context.Background(), "s1", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = p.HandleMessage(context.Background(), "s1", "مرحبا")
	assert.Error(t, err)
}

func TestIsFarewell(t *testing.T) {
	for _, m := range []string{"خروج", " EXIT ", "quit", "شكرا لك", "انهي"} {
		assert.True(t, IsFarewell(m), m)
	}
	for _, m := range []string{"شكرا", "بدي تاكسي", ""} {
		assert.False(t, IsFarewell(m), m)
	}
}
