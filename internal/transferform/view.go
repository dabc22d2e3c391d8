package transferform

// View identifies which face of the transfer sheet is showing. Submitting
// is tracked separately: the confirmation view stays visible while a
// submission is in flight.
type View string

const (
	ViewForm         View = "form"
	ViewConfirmation View = "confirmation"
)

var viewTransitions = map[View]map[View]struct{}{
	ViewForm: {
		ViewConfirmation: {},
	},
	ViewConfirmation: {
		ViewForm: {},
	},
}

func canTransition(current, next View) bool {
	nextViews, ok := viewTransitions[current]
	if !ok {
		return false
	}
	_, ok = nextViews[next]
	return ok
}
