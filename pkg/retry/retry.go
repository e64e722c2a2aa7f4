// Package retry runs actions until they succeed or a strategy gives up.
package retry

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retry executes the action until it succeeds or one of the strategies
// declines another attempt, returning the number of attempts made and the
// last error.
//
// Strategies run in order after every failure, so strategies that delay
// should be specified last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	for attempts := uint(1); ; attempts++ {
		err := action()
		if err == nil {
			return attempts, nil
		}

		for _, s := range strategies {
			if !s(attempts, err) {
				return attempts, err
			}
		}
	}
}
