package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWarMember_ParsesScalars(t *testing.T) {
	m, err := NewWarMember(map[string]any{
		"tag":             "#M1",
		"name":            "Mia",
		"townhallLevel":   float64(14),
		"mapPosition":     float64(1),
		"opponentAttacks": float64(2),
	}, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "#M1", m.Tag)
	assert.Equal(t, "Mia", m.Name)
	assert.Equal(t, 14, *m.TownHall)
	assert.Equal(t, 1, *m.MapPosition)
	assert.Equal(t, 2, *m.DefenseCount)
}

func TestNewWarMember_MissingFieldsAreAbsent(t *testing.T) {
	m, err := NewWarMember(map[string]any{"tag": "#M1"}, nil, nil, nil)
	require.NoError(t, err)

	assert.Nil(t, m.TownHall)
	assert.Nil(t, m.MapPosition)
	assert.Nil(t, m.DefenseCount)
	assert.Nil(t, m.BestOpponentAttack())
	assert.NotNil(t, m.Attacks())
	assert.Empty(t, m.Attacks())
	assert.Empty(t, m.Defenses())
	assert.False(t, m.IsOpponent())
}

func TestNewWarMember_StructuralViolation(t *testing.T) {
	_, err := NewWarMember([]any{"#M1"}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = NewWarMember(map[string]any{"tag": "#M1", "attacks": "none"}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = NewWarMember(map[string]any{"tag": "#M1", "attacks": []any{42}}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = NewWarMember(map[string]any{"tag": "#M1", "bestOpponentAttack": "#B2"}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestWarMember_AttacksKeepFeedOrderAndAreStable(t *testing.T) {
	client := struct{ name string }{"api"}
	m, err := NewWarMember(map[string]any{
		"tag": "#M2",
		"attacks": []any{
			map[string]any{"attackerTag": "#M2", "defenderTag": "#B2", "stars": float64(2), "order": float64(5)},
			map[string]any{"attackerTag": "#M2", "defenderTag": "#B3", "stars": float64(1), "order": float64(3)},
		},
	}, client, nil, nil)
	require.NoError(t, err)

	first := m.Attacks()
	second := m.Attacks()
	require.Len(t, first, 2)
	assert.Equal(t, "#B2", first[0].DefenderTag)
	assert.Equal(t, "#B3", first[1].DefenderTag)
	assert.Equal(t, first, second)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, client, first[0].Client())
	assert.Equal(t, 3, m.Stars())
}

func TestWarMember_ConcurrentAttacksAgree(t *testing.T) {
	raw := make([]any, 0, 50)
	for i := 0; i < 50; i++ {
		raw = append(raw, map[string]any{"attackerTag": "#M1", "defenderTag": "#B2", "order": float64(i)})
	}
	m, err := NewWarMember(map[string]any{"tag": "#M1", "attacks": raw}, nil, nil, nil)
	require.NoError(t, err)

	const readers = 16
	results := make([][]*Attack, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Attacks()
		}(i)
	}
	wg.Wait()

	for i := 1; i < readers; i++ {
		require.Len(t, results[i], 50)
		assert.Same(t, results[0][0], results[i][0])
		assert.Equal(t, results[0], results[i])
	}
}

func TestWarMember_ZeroValue(t *testing.T) {
	var m WarMember
	assert.Empty(t, m.Attacks())
	assert.Empty(t, m.Defenses())
	assert.Nil(t, m.BestOpponentAttack())
	assert.False(t, m.IsOpponent())
}
