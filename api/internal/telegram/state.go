package telegram

import "sync"

var inFlight sync.Map // chatID -> struct{}

func tryBeginLookup(chatID int64) bool {
	_, busy := inFlight.LoadOrStore(chatID, struct{}{})
	return !busy
}

func endLookup(chatID int64) { inFlight.Delete(chatID) }
