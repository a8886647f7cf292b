package dataset

import "math"

// Match is the normalized record stored in the dataset file
type Match struct {
	MatchID      int64 `json:"match_id"`
	MatchSeqNum  int64 `json:"match_seq_num"`
	RadiantWin   bool  `json:"radiant_win"`
	GameMode     int   `json:"game_mode"`
	LobbyType    int   `json:"lobby_type"`
	PicksRadiant []int `json:"picks_radiant"`
	PicksDire    []int `json:"picks_dire"`
}

// Dataset is the persisted collection of matches. DataSize equals
// len(Matches) after every flush.
type Dataset struct {
	DataSize int     `json:"data_size"`
	Matches  []Match `json:"matches"`
}

// Empty returns a dataset with no matches
func Empty() *Dataset {
	return &Dataset{Matches: []Match{}}
}

// GreatestSeqNum returns the largest sequence number stored
func (d *Dataset) GreatestSeqNum() (int64, bool) {
	if len(d.Matches) == 0 {
		return 0, false
	}
	greatest := int64(math.MinInt64)
	for _, m := range d.Matches {
		if m.MatchSeqNum > greatest {
			greatest = m.MatchSeqNum
		}
	}
	return greatest, true
}

// SmallestMatchID returns the smallest match ID stored
func (d *Dataset) SmallestMatchID() (int64, bool) {
	if len(d.Matches) == 0 {
		return 0, false
	}
	smallest := int64(math.MaxInt64)
	for _, m := range d.Matches {
		if m.MatchID < smallest {
			smallest = m.MatchID
		}
	}
	return smallest, true
}

// IDSet returns the set of stored match IDs
func (d *Dataset) IDSet() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(d.Matches))
	for _, m := range d.Matches {
		ids[m.MatchID] = struct{}{}
	}
	return ids
}
