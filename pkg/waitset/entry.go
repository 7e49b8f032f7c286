package waitset

import (
	"context"
	"time"

	"github.com/coreipc/corert/pkg/khandle"
)

// defaultInitialCapacity is how many results WaitGrow asks for before
// checking whether the kernel wanted more.
const defaultInitialCapacity = 4

// WaitGrow calls w.Wait with a results buffer that doubles from initial
// (or defaultInitialCapacity, if initial <= 0) up to max, using the
// maxResults growth hint (§4.4) to decide whether one more round is
// needed. It returns the results of all rounds combined: every result the
// wait set had pending, or, if the set never stops growing, those
// gathered up to the round whose buffer reached max.
func WaitGrow(ctx context.Context, w *WaitSet, deadline time.Time, initial, max int) ([]Result, *khandle.Status) {
	capHint := initial
	if capHint <= 0 {
		capHint = defaultInitialCapacity
	}
	if max <= 0 || max < capHint {
		max = capHint
	}
	var all []Result
	for {
		buf := make([]Result, capHint)
		n, maxResults, st := w.Wait(ctx, deadline, buf)
		if st != nil {
			if len(all) > 0 {
				return all, nil
			}
			return nil, st
		}
		all = append(all, buf[:n]...)
		if maxResults <= len(buf) || capHint >= max {
			return all, nil
		}
		capHint *= 2
		if capHint > max {
			capHint = max
		}
	}
}
