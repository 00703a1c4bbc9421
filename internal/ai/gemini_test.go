package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced json", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fenced", in: "```{\"a\":1}```", want: `{"a":1}`},
		{name: "whitespace", in: "  \n{\"a\":1}\n ", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSONString(tt.in))
		})
	}
}

func decode(t *testing.T, raw string) IntentResult {
	t.Helper()
	var r IntentResult
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	normalizeIntent(&r)
	return r
}

func TestNormalizeIntent(t *testing.T) {
	t.Run("trip keeps places", func(t *testing.T) {
		r := decode(t, `{"intent":"Trip","start_location":"الجامعة الأردنية","destination":"العبدلي","car_class":null,"reply":""}`)
		assert.Equal(t, IntentTrip, r.Intent)
		require.NotNil(t, r.StartLocation)
		assert.Equal(t, "الجامعة الأردنية", *r.StartLocation)
		require.NotNil(t, r.Destination)
		assert.Equal(t, "العبدلي", *r.Destination)
		assert.Nil(t, r.CarClass)
	})

	t.Run("blank and null strings become nil", func(t *testing.T) {
		r := decode(t, `{"intent":"trip","start_location":"  ","destination":"null","car_class":""}`)
		assert.Nil(t, r.StartLocation)
		assert.Nil(t, r.Destination)
		assert.Nil(t, r.CarClass)
	})

	t.Run("unknown intent is chat", func(t *testing.T) {
		r := decode(t, `{"intent":"booking","reply":"أهلين"}`)
		assert.Equal(t, IntentChat, r.Intent)
		assert.Equal(t, "أهلين", r.Reply)
	})

	t.Run("modify infers edit target", func(t *testing.T) {
		r := decode(t, `{"intent":"modify_location","destination":"الصويفية"}`)
		assert.Equal(t, EditEnd, r.EditTarget)

		r = decode(t, `{"intent":"modify_location","start_location":"البيت"}`)
		assert.Equal(t, EditStart, r.EditTarget)

		r = decode(t, `{"intent":"modify_location","start_location":"البيت","destination":"الصويفية"}`)
		assert.Equal(t, EditBoth, r.EditTarget)

		r = decode(t, `{"intent":"modify_location","edit_target":"START","destination":"الصويفية"}`)
		assert.Equal(t, EditStart, r.EditTarget)
	})
}

func TestPickCandidate(t *testing.T) {
	candidates := []string{"البيت", "الشغل"}
	assert.Equal(t, "البيت", pickCandidate(" البيت ", candidates))
	assert.Equal(t, "", pickCandidate(NoMatch, candidates))
	assert.Equal(t, "", pickCandidate("الجامعة", candidates))
	assert.Equal(t, "", pickCandidate("", candidates))
}

func TestBuildSystemPrompt(t *testing.T) {
	p := buildSystemPrompt(map[string]string{"last_start": "البيت", "last_car_class": "vip"})
	assert.Contains(t, p, "بداية آخر رحلة: البيت")
	assert.Contains(t, p, "وجهة آخر رحلة: NONE")
	assert.Contains(t, p, "نوع السيارة في آخر رحلة: vip")
}

func TestBuildMatchPrompt(t *testing.T) {
	p := buildMatchPrompt("بيتي", []string{"البيت", "الشغل"})
	assert.Contains(t, p, "- البيت\n- الشغل\n")
	assert.Contains(t, p, `"بيتي"`)
	assert.Contains(t, p, NoMatch)
}
