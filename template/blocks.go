package template

import "strings"

// blockStack records, for every open {% if %}, whether its current branch
// is live. It is created per compile call and carried from line to line.
type blockStack struct {
	frames []bool

	// strayEndifs counts {% endif %} tags seen with no open block.
	strayEndifs int
}

func (s *blockStack) push(live bool) {
	s.frames = append(s.frames, live)
}

// pop removes the innermost frame. Popping an empty stack is a no-op.
func (s *blockStack) pop() {
	if len(s.frames) == 0 {
		s.strayEndifs++
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// flip switches the innermost frame between its if and else branches.
func (s *blockStack) flip() {
	if len(s.frames) == 0 {
		return
	}
	top := len(s.frames) - 1
	s.frames[top] = !s.frames[top]
}

// live reports whether text at the current position is emitted: every open
// frame must be true. An empty stack is live.
func (s *blockStack) live() bool {
	for _, f := range s.frames {
		if !f {
			return false
		}
	}
	return true
}

func (s *blockStack) depth() int {
	return len(s.frames)
}

// conditionFunc evaluates the expression of an {% if %} tag.
type conditionFunc func(expr string) (bool, error)

// processBlocks scans one line, consuming if/else/endif tags and dropping
// text that falls inside a suppressed branch. The stack is updated in place
// so blocks left open continue on the next line.
func processBlocks(line string, stack *blockStack, evaluate conditionFunc) (string, error) {
	if stack.depth() == 0 && !strings.Contains(line, tagOpen) {
		return line, nil
	}

	var out strings.Builder
	out.Grow(len(line))

	for cursor := 0; cursor < len(line); {
		if strings.HasPrefix(line[cursor:], tagOpen) {
			if end := strings.Index(line[cursor+len(tagOpen):], tagClose); end != -1 {
				closing := cursor + len(tagOpen) + end
				next := closing + len(tagClose)
				tag := line[cursor:next]

				switch {
				case strings.HasPrefix(tag, ifTagPrefix):
					live := false
					if stack.live() {
						expr := strings.TrimSpace(line[cursor+len(ifTagPrefix) : closing])
						result, err := evaluate(expr)
						if err != nil {
							return "", err
						}
						live = result
					}
					stack.push(live)
					cursor = next
					continue
				case strings.HasPrefix(tag, elseifPrefix):
					// Tolerated but unsupported; the text is handled below
					// like any other character.
				case tag == elseTag || strings.HasPrefix(tag, elseTagPrefix):
					stack.flip()
					cursor = next
					continue
				case tag == endifTag:
					stack.pop()
					cursor = next
					continue
				}
			}
		}

		if stack.live() {
			out.WriteByte(line[cursor])
		}
		cursor++
	}

	return out.String(), nil
}
