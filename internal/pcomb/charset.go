package pcomb

// CharSet is the predict set attached to an alternative or optional
// branch at construction time (spec.md §4.F, §6): a one-character
// lookahead the scheduler uses to prune branches before running them.
// Implemented as a func rather than a bitset so terminals can describe
// arbitrarily large or Unicode-aware classes (spec.md's "character
// predicates") without the engine caring how they are represented.
type CharSet func(r rune) bool

// Chars builds a CharSet matching any rune in the given set literally.
func Chars(rs ...rune) CharSet {
	set := make(map[rune]bool, len(rs))
	for _, r := range rs {
		set[r] = true
	}
	return func(r rune) bool { return set[r] }
}

// Range builds a CharSet matching runes in [lo, hi] inclusive.
func Range(lo, hi rune) CharSet {
	return func(r rune) bool { return r >= lo && r <= hi }
}

// Union combines any number of CharSets into one.
func Union(sets ...CharSet) CharSet {
	return func(r rune) bool {
		for _, s := range sets {
			if s != nil && s(r) {
				return true
			}
		}
		return false
	}
}

// AnyChar matches every rune, including the synthetic end-of-input
// rune (spec.md §6 does not define an EOF predict rune, so terminals
// that must predict EOF use AnyChar and rely on the terminal function
// itself to reject).
func AnyChar(rune) bool { return true }

// NoChar matches nothing, so a branch predicted by it is never tried.
func NoChar(rune) bool { return false }
