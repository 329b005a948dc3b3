package model

// UsageCounter is the per-class running cost total. It only ever grows;
// updates are additive at the store, never read-modify-write in process.
type UsageCounter struct {
	ClassID   string
	TotalCost float64
}
