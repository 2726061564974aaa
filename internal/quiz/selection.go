package quiz

import (
	"encoding/json"
	"math/rand"
	"sort"
)

// UsedPlayers is the set of player ids already shown to a player. It is a
// value: every method that changes membership returns a new set, so a session
// can hand its set to the next one without sharing state.
type UsedPlayers struct {
	ids map[string]struct{}
}

func NewUsedPlayers(ids ...string) UsedPlayers {
	return UsedPlayers{}.with(ids...)
}

func (u UsedPlayers) Contains(id string) bool {
	_, ok := u.ids[id]
	return ok
}

func (u UsedPlayers) Len() int {
	return len(u.ids)
}

func (u UsedPlayers) IDs() []string {
	ids := make([]string, 0, len(u.ids))
	for id := range u.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (u UsedPlayers) with(ids ...string) UsedPlayers {
	next := make(map[string]struct{}, len(u.ids)+len(ids))
	for id := range u.ids {
		next[id] = struct{}{}
	}
	for _, id := range ids {
		next[id] = struct{}{}
	}
	return UsedPlayers{ids: next}
}

func (u UsedPlayers) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.IDs())
}

func (u *UsedPlayers) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*u = NewUsedPlayers(ids...)
	return nil
}

// SelectRound shuffles the pool and picks the players for one session,
// preferring players not in used. When fewer than RoundsPerSession unused
// players remain, the unused ones are still taken first and the rest is
// topped up from previously used players; the returned set then restarts from
// just this session's picks. Pools smaller than RoundsPerSession yield every
// player they have.
func SelectRound(pool Pool, used UsedPlayers, rng *rand.Rand) ([]PlayerRecord, UsedPlayers, error) {
	if len(pool) == 0 {
		return nil, used, ErrEmptyPool
	}

	var fresh, seen []string
	for _, id := range pool.IDs() {
		if used.Contains(id) {
			seen = append(seen, id)
			continue
		}
		fresh = append(fresh, id)
	}

	shuffleIDs(fresh, rng)
	picked := fresh
	exhausted := len(fresh) < RoundsPerSession
	if exhausted {
		shuffleIDs(seen, rng)
		picked = append(picked, seen...)
	}
	if len(picked) > RoundsPerSession {
		picked = picked[:RoundsPerSession]
	}

	players := make([]PlayerRecord, 0, len(picked))
	for _, id := range picked {
		record := pool[id]
		record.ID = id
		players = append(players, record)
	}

	if exhausted {
		return players, NewUsedPlayers(picked...), nil
	}
	return players, used.with(picked...), nil
}

// PickStats returns StatsPerRound distinct stat codes in shuffled order.
func PickStats(rng *rand.Rand) []StatCode {
	labels := AllStats()
	rng.Shuffle(len(labels), func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})
	return labels[:StatsPerRound:StatsPerRound]
}

func shuffleIDs(ids []string, rng *rand.Rand) {
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
