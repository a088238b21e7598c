package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// WarPayload is an in-progress war between #A1 (home) and #B1. Attacks, by
// order:
//
//	1 #M1 -> #B2 2*   2 #B2 -> #M1 3*   3 #M2 -> #B3 1*
//	4 #B3 -> #M2 1*   5 #M2 -> #B2 2*
//
// #M3 and #B4 neither attacked nor were attacked.
const WarPayload = `{
  "state": "inWar",
  "teamSize": 3,
  "attacksPerMember": 2,
  "preparationStartTime": "20240105T120000.000Z",
  "startTime": "20240106T110000.000Z",
  "endTime": "20240107T110000.000Z",
  "clan": {
    "tag": "#A1",
    "name": "Alpha",
    "clanLevel": 12,
    "attacks": 3,
    "stars": 3,
    "destructionPercentage": 42.5,
    "expEarned": 0,
    "members": [
      {
        "tag": "#M1", "name": "Mia", "townhallLevel": 14, "mapPosition": 1, "opponentAttacks": 1,
        "attacks": [
          {"attackerTag": "#M1", "defenderTag": "#B2", "stars": 2, "destructionPercentage": 75.5, "order": 1, "duration": 150}
        ],
        "bestOpponentAttack": {"attackerTag": "#B2", "defenderTag": "#M1", "stars": 3, "destructionPercentage": 100, "order": 2, "duration": 170}
      },
      {
        "tag": "#M2", "name": "Max", "townhallLevel": 13, "mapPosition": 2, "opponentAttacks": 1,
        "attacks": [
          {"attackerTag": "#M2", "defenderTag": "#B3", "stars": 1, "destructionPercentage": 48, "order": 3, "duration": 180},
          {"attackerTag": "#M2", "defenderTag": "#B2", "stars": 2, "destructionPercentage": 80, "order": 5, "duration": 120}
        ],
        "bestOpponentAttack": {"attackerTag": "#B3", "defenderTag": "#M2", "stars": 1, "destructionPercentage": 30, "order": 4, "duration": 175}
      },
      {"tag": "#M3", "name": "Moe", "mapPosition": 3}
    ]
  },
  "opponent": {
    "tag": "#B1",
    "name": "Bravo",
    "clanLevel": 10,
    "attacks": 2,
    "stars": 4,
    "destructionPercentage": 43.3,
    "members": [
      {
        "tag": "#B2", "name": "Bea", "townhallLevel": 14, "mapPosition": 1, "opponentAttacks": 2,
        "attacks": [
          {"attackerTag": "#B2", "defenderTag": "#M1", "stars": 3, "destructionPercentage": 100, "order": 2, "duration": 170}
        ],
        "bestOpponentAttack": {"attackerTag": "#M2", "defenderTag": "#B2", "stars": 2, "destructionPercentage": 80, "order": 5, "duration": 120}
      },
      {
        "tag": "#B3", "name": "Bo", "townhallLevel": 13, "mapPosition": 2, "opponentAttacks": 1,
        "attacks": [
          {"attackerTag": "#B3", "defenderTag": "#M2", "stars": 1, "destructionPercentage": 30, "order": 4, "duration": 175}
        ],
        "bestOpponentAttack": {"attackerTag": "#M2", "defenderTag": "#B3", "stars": 1, "destructionPercentage": 48, "order": 3, "duration": 180}
      },
      {"tag": "#B4", "name": "Bix", "townhallLevel": 12, "mapPosition": 3, "opponentAttacks": 0}
    ]
  }
}`

// LeagueGroupPayload is a league group with two clans and two rounds, the
// second not yet scheduled.
const LeagueGroupPayload = `{
  "state": "inWar",
  "season": "2024-01",
  "clans": [
    {
      "tag": "#A1", "name": "Alpha", "clanLevel": 12,
      "members": [
        {"tag": "#X1", "name": "Foo", "townHallLevel": 13},
        {"tag": "#X2", "name": "Bar"}
      ]
    },
    {"tag": "#B1", "name": "Bravo", "clanLevel": 10, "members": []}
  ],
  "rounds": [
    {"warTags": ["#W1", "#W2"]},
    {"warTags": ["#0", "#0"]}
  ]
}`

// Decode parses a JSON object fixture into a raw map.
func Decode(t testing.TB, payload string) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &v))
	return v
}

// WriteFile writes data under a fresh temp dir and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
