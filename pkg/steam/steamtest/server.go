// Package steamtest provides an in-memory Steam Web API for tests.
package steamtest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"matchharvest/pkg/steam"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type pageStatus struct {
	status int
	detail string
}

// Server serves the Dota 2 match endpoints from a fixed set of matches
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	matches     []steam.Match
	heroes      []steam.Hero
	heroCount   int
	pageStatus  map[int64]pageStatus
	garbage     map[string]int
	historyCode int
	requests    map[string]int
}

// NewServer starts a server with no matches
func NewServer() *Server {
	s := &Server{
		pageStatus: make(map[int64]pageStatus),
		garbage:    make(map[string]int),
		requests:   make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/IDOTA2Match_570/GetMatchDetails/v1", s.handleDetails)
	mux.HandleFunc("/IDOTA2Match_570/GetMatchHistory/v1", s.handleHistory)
	mux.HandleFunc("/IDOTA2Match_570/GetMatchHistoryBySequenceNum/v1", s.handlePage)
	mux.HandleFunc("/IEconDOTA2_570/GetHeroes/v1", s.handleHeroes)
	s.Server = httptest.NewServer(s.count(mux))
	return s
}

// AddMatches stores matches, kept ordered by sequence number
func (s *Server) AddMatches(matches ...steam.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, matches...)
	sort.SliceStable(s.matches, func(i, j int) bool {
		return s.matches[i].MatchSeqNum < s.matches[j].MatchSeqNum
	})
}

// SetHeroes sets the GetHeroes result
func (s *Server) SetHeroes(heroes ...steam.Hero) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heroes = heroes
	s.heroCount = len(heroes)
}

// SetHeroCount overrides the count reported with the hero list
func (s *Server) SetHeroCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heroCount = n
}

// SetPageStatus makes pages starting at seqNum report status instead of
// success
func (s *Server) SetPageStatus(seqNum int64, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageStatus[seqNum] = pageStatus{status: status, detail: detail}
}

// ServeGarbage makes the next n responses on path undecodable
func (s *Server) ServeGarbage(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.garbage[path] = n
}

// SetHistoryStatus makes GetMatchHistory answer with HTTP status code
func (s *Server) SetHistoryStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyCode = code
}

// Requests returns how many requests hit path
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		bad := s.garbage[r.URL.Path] > 0
		if bad {
			s.garbage[r.URL.Path]--
		}
		s.mu.Unlock()

		if bad {
			w.Write([]byte(`{"result": {`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.URL.Query().Get("match_id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.MatchID == id {
			writeJSON(w, map[string]interface{}{"result": m})
			return
		}
	}
	writeJSON(w, map[string]interface{}{"result": map[string]string{"error": "Match ID not found"}})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyCode != 0 {
		w.WriteHeader(s.historyCode)
		return
	}

	var latest *steam.Match
	for i := range s.matches {
		if latest == nil || s.matches[i].MatchID > latest.MatchID {
			latest = &s.matches[i]
		}
	}
	if latest == nil {
		writeJSON(w, map[string]interface{}{"result": map[string]interface{}{
			"status": 15, "statusDetail": "No matches found",
		}})
		return
	}
	writeJSON(w, map[string]interface{}{"result": map[string]interface{}{
		"status": 1, "num_results": 1, "matches": []steam.Match{*latest},
	}})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	start, _ := strconv.ParseInt(r.URL.Query().Get("start_at_match_seq_num"), 10, 64)
	n, _ := strconv.Atoi(r.URL.Query().Get("matches_requested"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if ps, ok := s.pageStatus[start]; ok {
		writeJSON(w, map[string]interface{}{"result": map[string]interface{}{
			"status": ps.status, "statusDetail": ps.detail,
		}})
		return
	}

	page := make([]steam.Match, 0, n)
	for _, m := range s.matches {
		if m.MatchSeqNum >= start && len(page) < n {
			page = append(page, m)
		}
	}
	writeJSON(w, map[string]interface{}{"result": map[string]interface{}{
		"status": 1, "matches": page,
	}})
}

func (s *Server) handleHeroes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string]interface{}{"result": map[string]interface{}{
		"heroes": s.heroes, "status": 200, "count": s.heroCount,
	}})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(data)
}

// NewMatch builds a ten player ranked All Pick match that passes the default
// filters
func NewMatch(id, seqNum int64) steam.Match {
	players := make([]steam.Player, 0, 10)
	for i := 0; i < 10; i++ {
		slot := i
		if i >= 5 {
			slot = 128 + i - 5
		}
		status := 0
		players = append(players, steam.Player{
			AccountID:    int64(1000 + i),
			PlayerSlot:   slot,
			HeroID:       int(id%50) + i + 1,
			LeaverStatus: &status,
		})
	}
	return steam.Match{
		MatchID:      id,
		MatchSeqNum:  seqNum,
		RadiantWin:   id%2 == 0,
		LobbyType:    7,
		GameMode:     22,
		HumanPlayers: 10,
		Players:      players,
	}
}
