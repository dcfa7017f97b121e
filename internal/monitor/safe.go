package monitor

import "fmt"

// runSafely executes fn and converts panics into returned errors tagged with scope.
// The monitor uses it around every call into a registered cache or subscriber.
func runSafely(scope string, fn func() error) (err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		if rerr, ok := recovered.(error); ok {
			err = fmt.Errorf("%s: %w: panic recovered: %w", scope, ErrCollection, rerr)
			return
		}
		err = fmt.Errorf("%s: %w: panic recovered: %v", scope, ErrCollection, recovered)
	}()

	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w: %w", scope, ErrCollection, err)
	}

	return nil
}
