// Package leaderboard keeps score records in ranking order.
package leaderboard

import "memorymatch/core"

// Board abstracts an ordered set of records, best first.
type Board interface {
	Insert(rec core.Record)
	Remove(id string)
	Len() int
	// Ascend visits records best first until fn returns false.
	Ascend(fn func(core.Record) bool)
	// Top returns the first n records accepted by q.
	Top(q core.Query) []core.Record
}
