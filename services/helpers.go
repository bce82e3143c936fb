package services

import (
	"errors"

	"github.com/pickuphub/pickuphub/repositories"
)

const maxMutationRetries = 3

// withVersionRetry re-runs a read-modify-write sequence that lost a CAS
// race. Concurrent mutations of one aggregate serialize this way instead
// of overshooting capacity or duplicating participants on stale reads.
func withVersionRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		err = fn()
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return err
		}
	}
	return ErrConcurrentUpdate
}

func removeString(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
