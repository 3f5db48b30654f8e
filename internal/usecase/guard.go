package usecase

// Guard reports whether user input is currently accepted.
type Guard func() bool

// AllOf - accepts only when every guard accepts.
func AllOf(guards ...Guard) Guard {
	return func() bool {
		for _, guard := range guards {
			if !guard() {
				return false
			}
		}

		return true
	}
}
