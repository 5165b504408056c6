package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkKillStreak  BookmarkType = "kill_streak"
	BookmarkLootJackpot BookmarkType = "loot_jackpot"
	BookmarkSwarmed     BookmarkType = "swarmed"
	BookmarkNearDeath   BookmarkType = "near_death"
	BookmarkStalemate   BookmarkType = "stalemate"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Session     int          `csv:"session"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"session", b.Session,
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in a session.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	maxHealth     float64
	nearDeath     bool // Latched until health recovers past half
	stalledCount  int  // Consecutive windows with engaged mobs and no hits
	stalemateSent bool
}

// NewBookmarkDetector creates a detector with the given history size. maxHealth is
// the observer's starting health.
func NewBookmarkDetector(historySize int, maxHealth float64) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stalemate detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		maxHealth:   maxHealth,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkKillStreak(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkLootJackpot(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSwarmed(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkNearDeath(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStalemate(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// average returns the mean of field over the history.
func (bd *BookmarkDetector) average(field func(WindowStats) float64) float64 {
	history := bd.getHistory()
	if len(history) == 0 {
		return 0
	}
	var sum float64
	for _, h := range history {
		sum += field(h)
	}
	return sum / float64(len(history))
}

func (bd *BookmarkDetector) mark(t BookmarkType, stats WindowStats, format string, args ...any) *Bookmark {
	return &Bookmark{
		Type:        t,
		Session:     stats.Session,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf(format, args...),
	}
}

func (bd *BookmarkDetector) checkKillStreak(stats WindowStats) *Bookmark {
	if len(bd.getHistory()) < 3 {
		return nil
	}
	avg := bd.average(func(s WindowStats) float64 { return float64(s.Kills) })
	if avg == 0 {
		return nil
	}
	if float64(stats.Kills) > avg*2.0 && stats.Kills >= 3 {
		return bd.mark(BookmarkKillStreak, stats, "%d kills is %.1fx average (%.2f)", stats.Kills, float64(stats.Kills)/avg, avg)
	}
	return nil
}

func (bd *BookmarkDetector) checkLootJackpot(stats WindowStats) *Bookmark {
	if len(bd.getHistory()) < 3 {
		return nil
	}
	avg := bd.average(func(s WindowStats) float64 { return float64(s.LootItems) })
	if stats.LootItems >= 5 && float64(stats.LootItems) > avg*2.0 {
		return bd.mark(BookmarkLootJackpot, stats, "%d items dropped against an average of %.2f", stats.LootItems, avg)
	}
	return nil
}

func (bd *BookmarkDetector) checkSwarmed(stats WindowStats) *Bookmark {
	avg := bd.average(func(s WindowStats) float64 { return float64(s.ActiveMobs) })
	if stats.ActiveMobs >= 6 && float64(stats.ActiveMobs) >= avg*3.0 {
		return bd.mark(BookmarkSwarmed, stats, "%d engaged mobs against an average of %.2f", stats.ActiveMobs, avg)
	}
	return nil
}

func (bd *BookmarkDetector) checkNearDeath(stats WindowStats) *Bookmark {
	if bd.maxHealth <= 0 {
		return nil
	}
	frac := stats.ObserverHealth / bd.maxHealth
	if bd.nearDeath {
		if frac > 0.5 {
			bd.nearDeath = false
		}
		return nil
	}
	if frac > 0 && frac < 0.2 {
		bd.nearDeath = true
		return bd.mark(BookmarkNearDeath, stats, "observer down to %.0f%% health", frac*100)
	}
	return nil
}

func (bd *BookmarkDetector) checkStalemate(stats WindowStats) *Bookmark {
	if stats.ActiveMobs == 0 || stats.ProjectileHits+stats.MeleeHits > 0 || stats.ObserverHits > 0 {
		bd.stalledCount = 0
		return nil
	}
	bd.stalledCount++
	if bd.stalledCount == 5 && !bd.stalemateSent { // trigger once per session
		bd.stalemateSent = true
		return bd.mark(BookmarkStalemate, stats, "%d engaged mobs and no hits for 5 windows", stats.ActiveMobs)
	}
	return nil
}
