package statistics

import (
	"fmt"
	"math"
	"sort"
)

// Placing is where one seat finished in a game
type Placing struct {
	Player   string
	Strategy string
	Rank     int // 1 for the first player out of cards
}

// GameResult represents the outcome of a single simulated game
type GameResult struct {
	Seed     int64     // RNG seed for this game (for replay)
	Turns    int       // Moves made until the game finished
	Placings []Placing // One per seat
}

// Sample accumulates running moments of a series of values
type Sample struct {
	N      int
	Sum    float64
	SumSq  float64 // Sum of squares for variance calculation
	Values []float64
}

// Add records a value
func (s *Sample) Add(v float64) {
	s.N++
	s.Sum += v
	s.SumSq += v * v
	s.Values = append(s.Values, v)
}

// Mean returns the arithmetic mean
func (s *Sample) Mean() float64 {
	if s.N == 0 {
		return 0
	}
	return s.Sum / float64(s.N)
}

// Variance returns the sample variance
func (s *Sample) Variance() float64 {
	if s.N < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSq - float64(s.N)*mean*mean) / float64(s.N-1)
}

// StdDev returns the sample standard deviation
func (s *Sample) StdDev() float64 {
	return math.Sqrt(math.Max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Sample) StdError() float64 {
	if s.N == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.N))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Sample) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median value
func (s *Sample) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0),
// interpolating between neighbours
func (s *Sample) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// StrategyStats tracks how one strategy placed across games
type StrategyStats struct {
	Seats int // Seats played, several per game when a strategy is repeated
	Wins  int
	Ranks Sample
}

// WinRate returns the share of seats that finished first
func (s *StrategyStats) WinRate() float64 {
	if s.Seats == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Seats)
}

// Statistics tracks the results of a bot simulation
type Statistics struct {
	Games      int
	Turns      Sample
	Strategies map[string]*StrategyStats
}

// Add incorporates a game result into the statistics
func (s *Statistics) Add(result GameResult) {
	if s.Strategies == nil {
		s.Strategies = make(map[string]*StrategyStats)
	}

	s.Games++
	s.Turns.Add(float64(result.Turns))

	for _, placing := range result.Placings {
		stats, ok := s.Strategies[placing.Strategy]
		if !ok {
			stats = &StrategyStats{}
			s.Strategies[placing.Strategy] = stats
		}
		stats.Seats++
		stats.Ranks.Add(float64(placing.Rank))
		if placing.Rank == 1 {
			stats.Wins++
		}
	}
}

// Names returns the strategies seen, best mean rank first
func (s *Statistics) Names() []string {
	names := make([]string, 0, len(s.Strategies))
	for name := range s.Strategies {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.Strategies[names[i]].Ranks.Mean(), s.Strategies[names[j]].Ranks.Mean()
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// Validate checks the results are consistent: every game has exactly one
// winner and every seat was counted once.
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}

	if s.Turns.N != s.Games {
		return fmt.Errorf("turn samples (%d) do not match games (%d)", s.Turns.N, s.Games)
	}

	wins := 0
	for name, stats := range s.Strategies {
		if stats.Ranks.N != stats.Seats {
			return fmt.Errorf("strategy %s: rank samples (%d) do not match seats (%d)", name, stats.Ranks.N, stats.Seats)
		}
		wins += stats.Wins
	}
	if wins != s.Games {
		return fmt.Errorf("total wins (%d) does not match total games (%d)", wins, s.Games)
	}

	return nil
}

// StrategyReport summarises one strategy in a Report
type StrategyReport struct {
	Name     string  `json:"name"`
	Seats    int     `json:"seats"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"winRate"`
	MeanRank float64 `json:"meanRank"`
	RankLow  float64 `json:"rankLow"`
	RankHigh float64 `json:"rankHigh"`
}

// Report is the machine-readable summary of a simulation
type Report struct {
	Lineup      string           `json:"lineup"`
	Seed        int64            `json:"seed"`
	Games       int              `json:"games"`
	MeanTurns   float64          `json:"meanTurns"`
	MedianTurns float64          `json:"medianTurns"`
	Strategies  []StrategyReport `json:"strategies"`
}

// Report summarises the statistics, strategies ordered by mean rank
func (s *Statistics) Report(lineup string, seed int64) Report {
	report := Report{
		Lineup:      lineup,
		Seed:        seed,
		Games:       s.Games,
		MeanTurns:   s.Turns.Mean(),
		MedianTurns: s.Turns.Median(),
	}
	for _, name := range s.Names() {
		st := s.Strategies[name]
		low, high := st.Ranks.ConfidenceInterval95()
		report.Strategies = append(report.Strategies, StrategyReport{
			Name:     name,
			Seats:    st.Seats,
			Wins:     st.Wins,
			WinRate:  st.WinRate(),
			MeanRank: st.Ranks.Mean(),
			RankLow:  low,
			RankHigh: high,
		})
	}
	return report
}
