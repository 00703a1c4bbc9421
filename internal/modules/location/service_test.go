package location

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeeny/internal/maps"
	"jeeny/internal/types"
)

type fakeGeocoder struct {
	queries []string
	results map[string]types.Point
	err     error
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (maps.GeocodeResult, error) {
	f.queries = append(f.queries, query)
	if p, ok := f.results[query]; ok {
		return maps.GeocodeResult{Point: p, FormattedAddress: query}, nil
	}
	if f.err != nil {
		return maps.GeocodeResult{}, f.err
	}
	return maps.GeocodeResult{}, maps.ErrNotFound
}

type fakeMatcher struct {
	choice     string
	err        error
	calls      int
	candidates []string
}

func (f *fakeMatcher) MatchPlace(_ context.Context, _ string, candidates []string) (string, error) {
	f.calls++
	f.candidates = candidates
	return f.choice, f.err
}

var (
	home    = types.Point{Lat: 31.9920, Lng: 35.8730}
	abdali  = types.Point{Lat: 31.9632, Lng: 35.9106}
	cairo   = types.Point{Lat: 30.0444, Lng: 31.2357}
	jubeiha = types.Point{Lat: 32.0167, Lng: 35.8667}
	errMaps = errors.New("maps unavailable")
)

func newTestService(geocoder Geocoder, matcher PlaceMatcher) *Service {
	logger, _ := test.NewNullLogger()
	saved := NewStaticPlaces(map[string]string{
		"البيت": "31.9920,35.8730",
		"الشغل": "العبدلي",
	})
	deps := ServiceDeps{Saved: saved, Geocoder: geocoder, Log: logger}
	if matcher != nil {
		deps.Matcher = matcher
	}
	return NewService(deps)
}

func TestService_Resolve_Empty(t *testing.T) {
	_, err := newTestService(&fakeGeocoder{}, nil).Resolve(context.Background(), "   ", RoleStart)
	assert.ErrorIs(t, err, ErrEmptyPlace)
}

func TestService_Resolve_LiteralCoordinates(t *testing.T) {
	geocoder := &fakeGeocoder{}
	svc := newTestService(geocoder, nil)

	start, err := svc.Resolve(context.Background(), "31.9566, 35.9457", RoleStart)
	require.NoError(t, err)
	assert.Equal(t, Location{Name: "الموقع المحدد", Point: types.Point{Lat: 31.9566, Lng: 35.9457}}, start)

	end, err := svc.Resolve(context.Background(), "31.9566,35.9457", RoleEnd)
	require.NoError(t, err)
	assert.Equal(t, "الوجهة المحددة", end.Name)

	assert.Empty(t, geocoder.queries)
}

func TestService_Resolve_LiteralCoordinatesNamedFromSavedPlace(t *testing.T) {
	loc, err := newTestService(&fakeGeocoder{}, nil).Resolve(context.Background(), "31.99200,35.87300", RoleStart)
	require.NoError(t, err)
	assert.Equal(t, "البيت", loc.Name)
	assert.Equal(t, home, loc.Point)
}

func TestService_Resolve_LiteralOutOfRegion(t *testing.T) {
	_, err := newTestService(&fakeGeocoder{}, nil).Resolve(context.Background(), "30.0444,31.2357", RoleEnd)
	assert.ErrorIs(t, err, ErrOutOfRegion)
}

func TestService_Resolve_SavedPlaceExact(t *testing.T) {
	geocoder := &fakeGeocoder{}
	loc, err := newTestService(geocoder, nil).Resolve(context.Background(), "البيت", RoleStart)

	require.NoError(t, err)
	assert.Equal(t, Location{Name: "البيت", Point: home}, loc)
	assert.Empty(t, geocoder.queries)
}

func TestService_Resolve_SavedPlaceSubstring(t *testing.T) {
	loc, err := newTestService(&fakeGeocoder{}, nil).Resolve(context.Background(), "من البيت", RoleStart)

	require.NoError(t, err)
	assert.Equal(t, "البيت", loc.Name)
}

func TestService_Resolve_SavedAddressIsGeocoded(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]types.Point{"العبدلي، الأردن": abdali}}
	loc, err := newTestService(geocoder, nil).Resolve(context.Background(), "الشغل", RoleEnd)

	require.NoError(t, err)
	assert.Equal(t, Location{Name: "الشغل", Point: abdali}, loc)
	assert.Equal(t, []string{"العبدلي، الأردن"}, geocoder.queries)
}

func TestService_Resolve_MatcherPicksSavedPlace(t *testing.T) {
	matcher := &fakeMatcher{choice: "البيت"}
	geocoder := &fakeGeocoder{}
	loc, err := newTestService(geocoder, matcher).Resolve(context.Background(), "بيتي", RoleStart)

	require.NoError(t, err)
	assert.Equal(t, "البيت", loc.Name)
	assert.Equal(t, 1, matcher.calls)
	assert.ElementsMatch(t, []string{"البيت", "الشغل"}, matcher.candidates)
	assert.Empty(t, geocoder.queries)
}

func TestService_Resolve_MatcherUnknownChoiceIgnored(t *testing.T) {
	matcher := &fakeMatcher{choice: "الجامعة"}
	geocoder := &fakeGeocoder{results: map[string]types.Point{"الجبيهة، الأردن": jubeiha}}
	loc, err := newTestService(geocoder, matcher).Resolve(context.Background(), "الجبيهة", RoleEnd)

	require.NoError(t, err)
	assert.Equal(t, Location{Name: "الجبيهة", Point: jubeiha}, loc)
}

func TestService_Resolve_FallsBackToEnglishSuffix(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]types.Point{"Abdali, Jordan": abdali}}
	loc, err := newTestService(geocoder, &fakeMatcher{}).Resolve(context.Background(), "Abdali", RoleEnd)

	require.NoError(t, err)
	assert.Equal(t, abdali, loc.Point)
	assert.Equal(t, []string{"Abdali، الأردن", "Abdali, Jordan"}, geocoder.queries)
}

func TestService_Resolve_GeocodingFailed(t *testing.T) {
	geocoder := &fakeGeocoder{err: errMaps}
	_, err := newTestService(geocoder, nil).Resolve(context.Background(), "مكان مش موجود", RoleEnd)

	assert.ErrorIs(t, err, ErrGeocodingFailed)
	assert.ErrorIs(t, err, errMaps)
	assert.Len(t, geocoder.queries, 2)
}

func TestService_Resolve_GeocodedOutOfRegion(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]types.Point{"القاهرة، الأردن": cairo}}
	_, err := newTestService(geocoder, nil).Resolve(context.Background(), "القاهرة", RoleEnd)

	assert.ErrorIs(t, err, ErrOutOfRegion)
}

func TestService_Resolve_NoGeocoder(t *testing.T) {
	logger, _ := test.NewNullLogger()
	svc := NewService(ServiceDeps{Log: logger})

	_, err := svc.Resolve(context.Background(), "العبدلي", RoleEnd)
	assert.ErrorIs(t, err, ErrGeocodingFailed)
}

func TestService_SavePlace(t *testing.T) {
	svc := newTestService(&fakeGeocoder{}, nil)
	ctx := context.Background()

	sp, err := svc.SavePlace(ctx, "الجامعة", "32.0142,35.8728")
	require.NoError(t, err)
	require.NotNil(t, sp.Point)
	assert.NotEmpty(t, sp.Geohash)

	_, err = svc.SavePlace(ctx, "القاهرة", "30.0444,31.2357")
	assert.ErrorIs(t, err, ErrOutOfRegion)

	_, err = svc.SavePlace(ctx, "", "x")
	assert.ErrorIs(t, err, ErrEmptyPlace)

	places, err := svc.SavedPlaces(ctx)
	require.NoError(t, err)
	var names []string
	for _, p := range places {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"البيت", "الجامعة", "الشغل"}, names)

	loc, err := svc.Resolve(ctx, "32.0142,35.8728", RoleEnd)
	require.NoError(t, err)
	assert.Equal(t, "الجامعة", loc.Name)
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in     string
		want   types.Point
		wantOK bool
	}{
		{in: "31.9566,35.9457", want: types.Point{Lat: 31.9566, Lng: 35.9457}, wantOK: true},
		{in: "  31 , 35  ", want: types.Point{Lat: 31, Lng: 35}, wantOK: true},
		{in: "-33.8,151.2", want: types.Point{Lat: -33.8, Lng: 151.2}, wantOK: true},
		{in: "91,35", wantOK: false},
		{in: "العبدلي", wantOK: false},
		{in: "31.9,", wantOK: false},
		{in: "31.9;35.9", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCoordinates(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLocation_EditsReturnCopies(t *testing.T) {
	orig := Location{Name: "البيت", Point: home}
	moved := orig.WithPoint(abdali).Rename("العبدلي")

	assert.Equal(t, Location{Name: "البيت", Point: home}, orig)
	assert.Equal(t, Location{Name: "العبدلي", Point: abdali}, moved)
}

func TestLoadStaticPlaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"البيت": "31.9920,35.8730", "الشغل": "العبدلي"}`), 0o600))

	places, err := LoadStaticPlaces(path)
	require.NoError(t, err)

	list, err := places.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	sp, ok, err := places.FindNear(context.Background(), types.Point{Lat: 31.99200001, Lng: 35.87300001})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "البيت", sp.Name)

	_, err = LoadStaticPlaces(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
