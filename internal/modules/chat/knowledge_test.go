package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKnowledgeOrder(t *testing.T) {
	k, err := DefaultKnowledge()
	require.NoError(t, err)

	topics := func(entries []Entry) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.Topic
		}
		return out
	}
	assert.Equal(t, []string{"burns", "cuts", "choking", "heart attack", "stroke"}, topics(k.FirstAid))
	assert.Equal(t, []string{"fever", "headache", "nausea"}, topics(k.CommonConditions))
}

func TestLookupMatchesWordStarts(t *testing.T) {
	k, err := DefaultKnowledge()
	require.NoError(t, err)

	tests := []struct {
		message string
		topic   string
	}{
		{"I burned my hand", "burns"},
		{"small CUT on my finger", "cuts"},
		{"signs of a Heart Attack?", "heart attack"},
		{"(stroke) symptoms", "stroke"},
		{"feeling nauseous", "nausea"},
		{"acute back pain", ""},
		{"what is heartburn", ""},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, ok := k.Lookup(tt.message)
			if tt.topic == "" {
				assert.False(t, ok, got)
				return
			}
			require.True(t, ok)
			assert.Contains(t, got, "For "+tt.topic+",")
		})
	}
}

func TestParseKnowledgeValidation(t *testing.T) {
	_, err := ParseKnowledge([]byte("first_aid: [oops"))
	assert.ErrorIs(t, err, ErrInvalidKnowledge)

	_, err = ParseKnowledge([]byte("first_aid:\n  - topic: x\n    advice: y\n"))
	assert.ErrorIs(t, err, ErrInvalidKnowledge)

	_, err = ParseKnowledge([]byte("common_conditions:\n  - topic: x\n    keywords: ['  ']\n    advice: y\n"))
	assert.ErrorIs(t, err, ErrInvalidKnowledge)

	k, err := ParseKnowledge([]byte("common_conditions:\n  - topic: cough\n    keywords: ['  COUGH ']\n    advice: Drink water.\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cough"}, k.CommonConditions[0].Keywords)
}
