package steam

// Player is one participant of a match. LeaverStatus is absent for bots.
type Player struct {
	AccountID    int64 `json:"account_id"`
	PlayerSlot   int   `json:"player_slot"`
	HeroID       int   `json:"hero_id"`
	LeaverStatus *int  `json:"leaver_status,omitempty"`
}

// Match is a raw match as returned by the match history endpoints
type Match struct {
	MatchID      int64    `json:"match_id"`
	MatchSeqNum  int64    `json:"match_seq_num"`
	RadiantWin   bool     `json:"radiant_win"`
	StartTime    int64    `json:"start_time"`
	Duration     int      `json:"duration"`
	LobbyType    int      `json:"lobby_type"`
	GameMode     int      `json:"game_mode"`
	HumanPlayers int      `json:"human_players"`
	Players      []Player `json:"players"`
}

// MatchDetails is the GetMatchDetails result. Error is set when the match
// cannot be served.
type MatchDetails struct {
	Match
	Error string `json:"error,omitempty"`
}

// Page is one GetMatchHistoryBySequenceNum result. Status 1 means success.
type Page struct {
	Status       int     `json:"status"`
	StatusDetail string  `json:"statusDetail,omitempty"`
	Matches      []Match `json:"matches"`
}

// OK reports whether the page was served successfully
func (p *Page) OK() bool {
	return p.Status == StatusOK
}

// Hero is one entry of the GetHeroes result
type Hero struct {
	Name          string `json:"name"`
	ID            int    `json:"id"`
	LocalizedName string `json:"localized_name,omitempty"`
}

type detailsResponse struct {
	Result MatchDetails `json:"result"`
}

type historyResponse struct {
	Result struct {
		Status       int     `json:"status"`
		StatusDetail string  `json:"statusDetail,omitempty"`
		Matches      []Match `json:"matches"`
	} `json:"result"`
}

type pageResponse struct {
	Result Page `json:"result"`
}

// HeroList is the GetHeroes result. Count is the count reported by the API.
type HeroList struct {
	Heroes []Hero `json:"heroes"`
	Status int    `json:"status"`
	Count  int    `json:"count"`
}

type heroesResponse struct {
	Result HeroList `json:"result"`
}
