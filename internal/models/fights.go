package models

// FightHistoryEntry is one line of a fighter's recent history card.
type FightHistoryEntry struct {
	Result   string `json:"result"` // "WIN" or "LOSS"
	Opponent string `json:"opponent"`
	Method   string `json:"method"`
	Round    int    `json:"round"`
	Time     string `json:"time"`
}
