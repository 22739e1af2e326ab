package registry

// DedupRegistry records the logical names claimed during one run. It is
// owned by the single scan worker and therefore carries no lock.
type DedupRegistry struct {
	claimed map[string]string
}

// NewDedupRegistry creates an empty dedup registry.
func NewDedupRegistry() *DedupRegistry {
	return &DedupRegistry{claimed: make(map[string]string)}
}

// TryClaim records name and returns true if no case-insensitively equal name
// was claimed before; otherwise it returns false and changes nothing.
func (d *DedupRegistry) TryClaim(name string) bool {
	key := foldKey(name)
	if _, exists := d.claimed[key]; exists {
		return false
	}
	d.claimed[key] = name
	return true
}

// Claimed reports whether name was already claimed, without claiming it.
func (d *DedupRegistry) Claimed(name string) bool {
	_, exists := d.claimed[foldKey(name)]
	return exists
}

// Reset forgets every claimed name. Called at the start of each run.
func (d *DedupRegistry) Reset() {
	clear(d.claimed)
}

// Len returns the number of claimed names.
func (d *DedupRegistry) Len() int {
	return len(d.claimed)
}
