package focus

import (
	"time"

	"github.com/spiffcs/focus/internal/model"
)

// RefreshEvent carries the full current item set after a refresh.
type RefreshEvent struct {
	Items []model.Item
	Force bool
	At    time.Time
}
