package domain_test

import (
	"sync"
	"testing"

	"coc-war-tracker/internal/domain"
	"coc-war-tracker/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWar(t *testing.T) *domain.War {
	t.Helper()
	war, err := domain.NewWar(testutil.Decode(t, testutil.WarPayload), nil)
	require.NoError(t, err)
	return war
}

func tagsOf(attacks []*domain.Attack) [][2]string {
	out := make([][2]string, len(attacks))
	for i, a := range attacks {
		out[i] = [2]string{a.AttackerTag, a.DefenderTag}
	}
	return out
}

func TestNewWar_BuildsBothSides(t *testing.T) {
	war := newTestWar(t)

	require.NotNil(t, war.Clan())
	require.NotNil(t, war.Opponent())
	assert.Equal(t, "#A1", war.Clan().Tag)
	assert.Equal(t, "#B1", war.Opponent().Tag)
	assert.Equal(t, domain.StateInWar, war.State)
	assert.Equal(t, 3, *war.TeamSize)
	assert.Equal(t, 2, *war.AttacksPerMember)
	assert.Len(t, war.Members(), 6)

	m := war.Member("#B3")
	require.NotNil(t, m)
	assert.Same(t, war, m.War())
	assert.Same(t, war.Opponent(), m.Clan())
	assert.Nil(t, war.Member("#nobody"))
}

func TestWar_AttacksSpanBothSidesInOrder(t *testing.T) {
	war := newTestWar(t)

	attacks := war.Attacks()
	require.Len(t, attacks, 5)
	for i, a := range attacks {
		assert.Equal(t, i+1, a.Order)
	}
	assert.Len(t, war.Clan().Attacks(), 3)
	assert.Len(t, war.Opponent().Attacks(), 2)
}

func TestWar_DefensesFromOtherClan(t *testing.T) {
	war := newTestWar(t)

	defenses := war.Member("#B2").Defenses()
	assert.Equal(t, [][2]string{{"#M1", "#B2"}, {"#M2", "#B2"}}, tagsOf(defenses))
	assert.Equal(t, 1, defenses[0].Order)
	assert.Equal(t, 5, defenses[1].Order)
	assert.Equal(t, 2, defenses[0].Stars)
}

func TestWar_EveryAttackIsExactlyOneDefense(t *testing.T) {
	war := newTestWar(t)

	for _, a := range war.Attacks() {
		for _, m := range war.Members() {
			count := 0
			for _, d := range m.Defenses() {
				if d == a {
					count++
				}
			}
			if m.Tag == a.DefenderTag {
				assert.Equal(t, 1, count, "attack %d on %s", a.Order, m.Tag)
			} else {
				assert.Zero(t, count, "attack %d leaked to %s", a.Order, m.Tag)
			}
		}
	}
}

func TestWar_BestOpponentAttack(t *testing.T) {
	war := newTestWar(t)

	best := war.Member("#B2").BestOpponentAttack()
	require.NotNil(t, best)
	assert.Same(t, war.GetAttack("#M2", "#B2"), best)
	assert.Equal(t, 5, best.Order)

	best = war.Member("#M1").BestOpponentAttack()
	require.NotNil(t, best)
	assert.Equal(t, "#B2", best.AttackerTag)

	assert.Nil(t, war.Member("#M3").BestOpponentAttack())
	assert.Nil(t, war.Member("#B4").BestOpponentAttack())
}

func TestWar_UnresolvedLookups(t *testing.T) {
	war := newTestWar(t)

	assert.Nil(t, war.GetAttack("#M3", "#B2"))
	assert.NotNil(t, war.GetDefenses("#M3"))
	assert.Empty(t, war.GetDefenses("#M3"))
	assert.Empty(t, war.GetDefenses("#nobody"))
}

func TestWar_IsOpponent(t *testing.T) {
	war := newTestWar(t)

	for _, m := range war.Clan().Members() {
		assert.False(t, m.IsOpponent(), m.Tag)
	}
	for _, m := range war.Opponent().Members() {
		assert.True(t, m.IsOpponent(), m.Tag)
	}
}

func TestWar_IsOpponentWithoutOpponent(t *testing.T) {
	raw := testutil.Decode(t, testutil.WarPayload)
	delete(raw, "opponent")

	war, err := domain.NewWar(raw, nil)
	require.NoError(t, err)
	assert.Nil(t, war.Opponent())
	for _, m := range war.Members() {
		assert.False(t, m.IsOpponent())
	}
	assert.Empty(t, war.Member("#B2").Defenses())
}

func TestWar_IsOpponentWithTaglessClans(t *testing.T) {
	war, err := domain.NewWar(map[string]any{
		"clan":     map[string]any{"members": []any{map[string]any{"tag": "#M1"}}},
		"opponent": map[string]any{"members": []any{map[string]any{"tag": "#B2"}}},
	}, nil)
	require.NoError(t, err)

	assert.False(t, war.Member("#M1").IsOpponent())
	assert.True(t, war.Member("#B2").IsOpponent())
}

func TestWarClan_Defenses(t *testing.T) {
	war := newTestWar(t)

	assert.Equal(t, [][2]string{
		{"#M1", "#B2"},
		{"#M2", "#B3"},
		{"#M2", "#B2"},
	}, tagsOf(war.Opponent().Defenses()))
	assert.Equal(t, [][2]string{
		{"#B2", "#M1"},
		{"#B3", "#M2"},
	}, tagsOf(war.Clan().Defenses()))
}

func TestWarClan_DefensesWithRepeatedTags(t *testing.T) {
	war, err := domain.NewWar(map[string]any{
		"clan": map[string]any{
			"tag": "#A1",
			"members": []any{
				map[string]any{
					"tag": "#M1",
					"attacks": []any{
						map[string]any{"attackerTag": "#M1", "defenderTag": "#B2", "stars": float64(2), "order": float64(1)},
					},
				},
			},
		},
		"opponent": map[string]any{
			"tag": "#B1",
			"members": []any{
				map[string]any{"tag": "#B2", "mapPosition": float64(1)},
				map[string]any{"tag": "#B2", "mapPosition": float64(2)},
				map[string]any{"name": "no tag"},
				map[string]any{"name": "no tag either"},
			},
		},
	}, nil)
	require.NoError(t, err)

	require.Len(t, war.Attacks(), 1)
	assert.Equal(t, [][2]string{{"#M1", "#B2"}}, tagsOf(war.Opponent().Defenses()))
	assert.Empty(t, war.Clan().Defenses())
}

func TestNewWarFor_SwapsSides(t *testing.T) {
	war, err := domain.NewWarFor(testutil.Decode(t, testutil.WarPayload), nil, "#B1")
	require.NoError(t, err)

	assert.Equal(t, "#B1", war.Clan().Tag)
	assert.Equal(t, "#A1", war.Opponent().Tag)
	assert.True(t, war.Member("#M1").IsOpponent())
	assert.False(t, war.Member("#B2").IsOpponent())
	assert.Equal(t, "winning", war.Status())
}

func TestWar_Scenario_SingleAttack(t *testing.T) {
	raw := map[string]any{
		"state": "inWar",
		"clan": map[string]any{
			"tag": "#A1",
			"members": []any{map[string]any{
				"tag": "#M1",
				"attacks": []any{map[string]any{
					"attackerTag": "#M1", "defenderTag": "#B2", "stars": float64(2), "order": float64(1),
				}},
			}},
		},
		"opponent": map[string]any{
			"tag":     "#B1",
			"members": []any{map[string]any{"tag": "#B2"}},
		},
	}

	war, err := domain.NewWar(raw, nil)
	require.NoError(t, err)

	defenses := war.Member("#B2").Defenses()
	require.Len(t, defenses, 1)
	assert.Equal(t, "#M1", defenses[0].AttackerTag)
	assert.Equal(t, 2, defenses[0].Stars)
	assert.Same(t, war.Member("#M1").Attacks()[0], defenses[0])
}

func TestWar_StructuralViolations(t *testing.T) {
	_, err := domain.NewWar("not a war", nil)
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)

	raw := testutil.Decode(t, testutil.WarPayload)
	raw["opponent"].(map[string]any)["members"] = []any{"#B2"}
	_, err = domain.NewWar(raw, nil)
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	assert.Contains(t, err.Error(), "opponent")
}

func TestAttack_ResolvesParticipants(t *testing.T) {
	war := newTestWar(t)

	a := war.GetAttack("#M2", "#B2")
	require.NotNil(t, a)
	assert.Same(t, war.Member("#M2"), a.Attacker())
	assert.Same(t, war.Member("#B2"), a.Defender())
	assert.Same(t, war, a.War())
	assert.InDelta(t, 80.0, a.Destruction, 1e-9)
	assert.Equal(t, 120, a.Duration)

	assert.False(t, a.IsFresh())
	assert.True(t, war.GetAttack("#M1", "#B2").IsFresh())
}

func TestWar_TypeAndStatus(t *testing.T) {
	war := newTestWar(t)
	assert.Equal(t, domain.TypeRandom, war.Type())
	assert.False(t, war.IsCWL())
	assert.Equal(t, "losing", war.Status())

	raw := testutil.Decode(t, testutil.WarPayload)
	raw["startTime"] = "20240106T120000.000Z"
	raw["state"] = domain.StateWarEnded
	friendly, err := domain.NewWar(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeFriendly, friendly.Type())
	assert.Equal(t, "lost", friendly.Status())

	raw["warTag"] = "#W1"
	raw["opponent"].(map[string]any)["stars"] = float64(3)
	raw["opponent"].(map[string]any)["destructionPercentage"] = float64(40)
	cwl, err := domain.NewWar(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeCWL, cwl.Type())
	assert.Equal(t, "won", cwl.Status())

	delete(raw, "warTag")
	delete(raw, "startTime")
	unknown, err := domain.NewWar(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "", unknown.Type())
}

func TestWar_EmptyPayload(t *testing.T) {
	war, err := domain.NewWar(map[string]any{"state": domain.StateNotInWar}, nil)
	require.NoError(t, err)

	assert.Nil(t, war.Clan())
	assert.Nil(t, war.Opponent())
	assert.Empty(t, war.Members())
	assert.Empty(t, war.Attacks())
	assert.Equal(t, "", war.Status())
}

func TestWar_ConcurrentQueries(t *testing.T) {
	war := newTestWar(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, m := range war.Members() {
				_ = m.Attacks()
				_ = m.Defenses()
				_ = m.BestOpponentAttack()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, war.Attacks(), 5)
}
