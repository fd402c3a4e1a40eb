package template

// Direction is the tab order step used by NextFocusIndex.
type Direction int

// Focus directions.
const (
	Backward Direction = -1
	Forward  Direction = 1
)

// NextFocusIndex returns the field position that receives focus after
// current when stepping in dir. fields are the unique variables of a snippet
// and filled[i] reports whether fields[i] has a value.
//
// While any required field is unfilled only those fields are visited;
// otherwise every field is. Both ends wrap. With no candidates the current
// position is returned unchanged.
func NextFocusIndex(current int, dir Direction, fields []VariableSpec, filled []bool) int {
	n := len(fields)
	if n == 0 {
		return current
	}
	if dir == 0 {
		dir = Forward
	}

	isFilled := func(i int) bool { return i < len(filled) && filled[i] }

	requiredOnly := false
	for i, f := range fields {
		if !f.Optional && !isFilled(i) {
			requiredOnly = true
			break
		}
	}

	for step := 1; step <= n; step++ {
		i := mod(current+step*int(dir), n)
		if !requiredOnly || (!fields[i].Optional && !isFilled(i)) {
			return i
		}
	}

	return current
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
