package suggestfield

import "unicode"

// wordBackward moves the cursor one word to the left.
func (m *Input) wordBackward() {
	if m.pos == 0 || len(m.value) == 0 {
		return
	}

	i := m.pos - 1
	for i >= 0 && unicode.IsSpace(m.value[i]) {
		m.SetCursor(m.pos - 1)
		i--
	}
	for i >= 0 && !unicode.IsSpace(m.value[i]) {
		m.SetCursor(m.pos - 1)
		i--
	}
}

// wordForward moves the cursor one word to the right.
func (m *Input) wordForward() {
	if m.pos >= len(m.value) || len(m.value) == 0 {
		return
	}

	i := m.pos
	for i < len(m.value) && unicode.IsSpace(m.value[i]) {
		m.SetCursor(m.pos + 1)
		i++
	}
	for i < len(m.value) && !unicode.IsSpace(m.value[i]) {
		m.SetCursor(m.pos + 1)
		i++
	}
}

// deleteWordBackward deletes the word left of the cursor, along with any
// whitespace between the word and the cursor.
func (m *Input) deleteWordBackward() {
	if m.pos == 0 || len(m.value) == 0 {
		return
	}

	oldPos := m.pos
	start := oldPos
	for start > 0 && unicode.IsSpace(m.value[start-1]) {
		start--
	}
	for start > 0 && !unicode.IsSpace(m.value[start-1]) {
		start--
	}

	m.kill(span{start, oldPos}, killBackward)
}

// deleteWordForward deletes the word right of the cursor, along with any
// whitespace between the cursor and the word.
func (m *Input) deleteWordForward() {
	if m.pos >= len(m.value) || len(m.value) == 0 {
		return
	}

	oldPos := m.pos
	end := oldPos
	for end < len(m.value) && unicode.IsSpace(m.value[end]) {
		end++
	}
	for end < len(m.value) && !unicode.IsSpace(m.value[end]) {
		end++
	}

	m.kill(span{oldPos, end}, killForward)
}

// deleteBeforeCursor deletes all text before the cursor.
func (m *Input) deleteBeforeCursor() {
	m.kill(span{0, m.pos}, killBackward)
}

// deleteAfterCursor deletes all text after the cursor.
func (m *Input) deleteAfterCursor() {
	m.kill(span{m.pos, len(m.value)}, killForward)
}

// swapCharacters swaps the character before the cursor with the character at
// the cursor. At the end of the line it swaps the two characters before the
// cursor, Emacs style.
func (m *Input) swapCharacters() {
	if m.pos == 0 || len(m.value) < 2 {
		return
	}

	v := cloneRunes(m.value)
	idx := m.pos
	if idx == len(v) {
		v[idx-1], v[idx-2] = v[idx-2], v[idx-1]
		m.value = v
		return
	}

	v[idx-1], v[idx] = v[idx], v[idx-1]
	m.value = v
	m.SetCursor(m.pos + 1)
}

// kill cuts r out of the value into the kill ring. The ghost is dropped
// until the owner sets one for the shortened text.
func (m *Input) kill(r span, direction killDirection) {
	m.killRing.push(m.value[r.start:r.end], direction)

	newValue := cloneConcatRunes(m.value[:r.start], m.value[r.end:])
	m.Err = m.validate(newValue)
	m.value = newValue
	m.SetCursor(r.start)
	m.ghost = nil
}

// yank inserts the newest kill at the cursor.
func (m *Input) yank() {
	text := m.killRing.latest()
	if len(text) == 0 {
		return
	}
	start := m.pos
	m.insertRunesFromUserInput(text)
	m.killRing.yanked = &span{start, m.pos}
	m.ghost = nil
}

// yankPop swaps the text of the previous yank for the next older kill.
func (m *Input) yankPop() {
	prev, text, ok := m.killRing.rotate()
	if !ok {
		return
	}
	start := clamp(prev.start, 0, len(m.value))
	end := clamp(prev.end, start, len(m.value))

	newValue := make([]rune, 0, len(m.value)-(end-start)+len(text))
	newValue = append(newValue, m.value[:start]...)
	newValue = append(newValue, text...)
	newValue = append(newValue, m.value[end:]...)

	m.Err = m.validate(newValue)
	m.value = newValue
	m.SetCursor(start + len(text))
	m.killRing.yanked = &span{start, m.pos}
	m.ghost = nil
}

// clamp returns the value v constrained to the range [low, high].
// If high < low, the arguments are swapped.
func clamp(v, low, high int) int {
	if high < low {
		low, high = high, low
	}
	return min(high, max(low, v))
}

func cloneRunes(r []rune) []rune {
	clone := make([]rune, len(r))
	copy(clone, r)
	return clone
}

func cloneConcatRunes(r1, r2 []rune) []rune {
	clone := make([]rune, len(r1)+len(r2))
	copy(clone, r1)
	copy(clone[len(r1):], r2)
	return clone
}
