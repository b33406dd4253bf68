package buffer

// counters is updated under the pool lock
type counters struct {
	hits      uint64
	misses    uint64
	evictions uint64
	writes    uint64
}

// Stats is a snapshot of the pool state
type Stats struct {
	Capacity int
	Valid    int
	Dirty    int
	Pinned   int
	// Hits counts Fetch/Allocate calls served from the pool
	Hits uint64
	// Misses counts Fetch calls which read the page from disk
	Misses uint64
	// Evictions counts valid pages which were pushed out to make room
	Evictions uint64
	// Writes counts pages written out to disk
	Writes uint64
}

// Stats returns the current pool statistics
func (p *Pool) Stats() Stats {
	p.Lock()
	defer p.Unlock()

	st := Stats{
		Capacity:  len(p.slots),
		Hits:      p.stats.hits,
		Misses:    p.stats.misses,
		Evictions: p.stats.evictions,
		Writes:    p.stats.writes,
	}
	for _, pg := range p.slots {
		if !pg.IsValid() {
			continue
		}
		st.Valid++
		if pg.IsDirty() {
			st.Dirty++
		}
		if pg.IsPinned() {
			st.Pinned++
		}
	}
	return st
}
