package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSQLiteSink_RecordAndQuery(t *testing.T) {
	sink, err := NewSQLiteSink(":memory:")
	require.NoError(t, err)
	defer sink.Close()

	started := time.Now().Add(-5 * time.Minute)
	rec := GameRecord{
		RoomCode:  "ABC123",
		SessionID: "sess-1",
		WinnerID:  "p1",
		StartedAt: started,
		EndedAt:   time.Now(),
		Standings: []PlayerResult{
			{PlayerID: "p1", Nickname: "alice", Placement: 1, Score: 42, Winner: true},
			{PlayerID: "p2", Nickname: "bob", Placement: 2, RemainingCards: 4, HandPoints: 42},
		},
	}
	require.NoError(t, sink.Record(rec))

	// Duplicate session ids are ignored, not errored.
	require.NoError(t, sink.Record(rec))

	games, err := sink.RoomGames(context.Background(), "ABC123", 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, "p1", games[0].WinnerID)
	require.Len(t, games[0].Standings, 2)
	require.True(t, games[0].Standings[0].Winner)
	require.Equal(t, 2, games[0].Standings[1].Placement)
	require.Equal(t, 42, games[0].Standings[1].HandPoints)
	require.Equal(t, started.UnixMilli(), games[0].StartedAt.UnixMilli())
}

func TestSQLiteSink_EmptyRoom(t *testing.T) {
	sink, err := NewSQLiteSink(":memory:")
	require.NoError(t, err)
	defer sink.Close()

	games, err := sink.RoomGames(context.Background(), "NOPE00", 10)
	require.NoError(t, err)
	require.Empty(t, games)
}
