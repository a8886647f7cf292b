package filter

import (
	"sort"

	"matchharvest/pkg/dataset"
	"matchharvest/pkg/steam"
)

// direSlotBit is set in player_slot for players on the Dire side
const direSlotBit = 0x80

// TagSet is a set of accepted game mode or lobby type tags
type TagSet map[int]struct{}

// NewTagSet builds a TagSet from tags
func NewTagSet(tags ...int) TagSet {
	s := make(TagSet, len(tags))
	for _, tag := range tags {
		s[tag] = struct{}{}
	}
	return s
}

// Contains reports whether tag is in the set
func (s TagSet) Contains(tag int) bool {
	_, ok := s[tag]
	return ok
}

// Tags returns the tags in ascending order
func (s TagSet) Tags() []int {
	tags := make([]int, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	return tags
}

// Rules decide which matches are accepted. A MaxMatchID of zero leaves the
// range open at the top.
type Rules struct {
	GameModes    TagSet
	LobbyTypes   TagSet
	HumanPlayers int
	MinMatchID   int64
	MaxMatchID   int64
}

// Verdict is the outcome of evaluating one match
type Verdict int

const (
	Accepted Verdict = iota
	RejectedLobby
	RejectedMode
	RejectedRange
	RejectedPlayers
	RejectedDuplicate
	RejectedLeaver
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case RejectedLobby:
		return "lobby_type"
	case RejectedMode:
		return "game_mode"
	case RejectedRange:
		return "match_id_range"
	case RejectedPlayers:
		return "human_players"
	case RejectedDuplicate:
		return "duplicate"
	case RejectedLeaver:
		return "leaver"
	default:
		return "unknown"
	}
}

// Pipeline evaluates raw matches against Rules and a set of already
// stored match IDs. Accepted matches join the set.
type Pipeline struct {
	rules Rules
	seen  map[int64]struct{}
}

// NewPipeline creates a pipeline. seen is owned by the pipeline afterwards.
func NewPipeline(rules Rules, seen map[int64]struct{}) *Pipeline {
	if seen == nil {
		seen = make(map[int64]struct{})
	}
	return &Pipeline{rules: rules, seen: seen}
}

// Rules returns the rules the pipeline applies
func (p *Pipeline) Rules() Rules {
	return p.rules
}

// Seen reports whether id is stored or was accepted earlier
func (p *Pipeline) Seen(id int64) bool {
	_, ok := p.seen[id]
	return ok
}

// Evaluate decides whether raw is accepted and, if so, returns its
// normalized form.
func (p *Pipeline) Evaluate(raw steam.Match) (dataset.Match, Verdict) {
	if verdict := p.check(raw); verdict != Accepted {
		return dataset.Match{}, verdict
	}

	radiant := make([]int, 0, 5)
	dire := make([]int, 0, 5)
	for _, player := range raw.Players {
		if player.LeaverStatus == nil {
			// bot
			continue
		}
		if status := *player.LeaverStatus; status != 0 && status != 1 {
			return dataset.Match{}, RejectedLeaver
		}
		if player.PlayerSlot&direSlotBit != 0 {
			dire = append(dire, player.HeroID)
		} else {
			radiant = append(radiant, player.HeroID)
		}
	}
	sort.Ints(radiant)
	sort.Ints(dire)

	p.seen[raw.MatchID] = struct{}{}
	return dataset.Match{
		MatchID:      raw.MatchID,
		MatchSeqNum:  raw.MatchSeqNum,
		RadiantWin:   raw.RadiantWin,
		GameMode:     raw.GameMode,
		LobbyType:    raw.LobbyType,
		PicksRadiant: radiant,
		PicksDire:    dire,
	}, Accepted
}

func (p *Pipeline) check(raw steam.Match) Verdict {
	switch {
	case !p.rules.LobbyTypes.Contains(raw.LobbyType):
		return RejectedLobby
	case !p.rules.GameModes.Contains(raw.GameMode):
		return RejectedMode
	case raw.MatchID < p.rules.MinMatchID,
		p.rules.MaxMatchID > 0 && raw.MatchID > p.rules.MaxMatchID:
		return RejectedRange
	case raw.HumanPlayers != p.rules.HumanPlayers:
		return RejectedPlayers
	case p.Seen(raw.MatchID):
		return RejectedDuplicate
	}
	return Accepted
}
