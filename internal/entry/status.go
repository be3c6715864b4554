package entry

// Status bits, packed into a single bitflag.Word. Grounded on the
// packed-status model the original source's in-progress migration was
// converging on (see design note on canonical status representation).
const (
	HasData uint32 = 1 << iota
	HasError
	Loading
	Validating
	Alive
	UsedThisPass
)

// Intent bits: pending reasons for a fetch, accumulated between
// observations and drained atomically by launch logic.
const (
	ManuallyTriggered uint32 = 1 << iota
	ApplicationFocused
	RetryOnError
	FirstUsage
	RefreshIntervalIntent
	Stale
	Mutate
)
