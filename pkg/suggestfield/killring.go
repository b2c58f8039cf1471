package suggestfield

const killRingMax = 30

type killDirection int

const (
	killNone killDirection = iota
	killForward
	killBackward
)

// span is a half-open rune range of the field value.
type span struct{ start, end int }

// killRing holds recently killed text, newest first. It only tracks text;
// the Input applies kills and yanks to its own value.
type killRing struct {
	entries [][]rune
	// chain is the direction of an unbroken run of kills. Another kill in
	// that direction grows entries[0] instead of adding an entry.
	chain killDirection
	// yanked is the text inserted by the last yank while a yank-pop may
	// still replace it. rotation is the entry it currently shows.
	yanked   *span
	rotation int
}

func (r *killRing) push(text []rune, direction killDirection) {
	r.yanked = nil
	if len(text) == 0 {
		r.chain = killNone
		return
	}

	text = cloneRunes(text)
	switch {
	case r.chain != direction || len(r.entries) == 0:
		r.entries = append([][]rune{text}, r.entries...)
		if len(r.entries) > killRingMax {
			r.entries = r.entries[:killRingMax]
		}
		r.rotation = 0
	case direction == killForward:
		r.entries[0] = append(r.entries[0], text...)
	default:
		r.entries[0] = append(text, r.entries[0]...)
	}
	r.chain = direction
}

// latest returns a copy of the newest entry, or nil when nothing was killed.
func (r *killRing) latest() []rune {
	if len(r.entries) == 0 {
		return nil
	}
	r.rotation = 0
	return cloneRunes(r.entries[0])
}

// rotate returns the range of the previous yank and the next older entry to
// put in its place. ok is false unless a yank is still active and the ring
// holds another entry.
func (r *killRing) rotate() (prev span, text []rune, ok bool) {
	if r.yanked == nil || len(r.entries) < 2 {
		return span{}, nil, false
	}
	r.rotation = (r.rotation + 1) % len(r.entries)
	return *r.yanked, cloneRunes(r.entries[r.rotation]), true
}

// interrupt ends the kill chain and the active yank.
func (r *killRing) interrupt() {
	r.chain = killNone
	r.yanked = nil
}
