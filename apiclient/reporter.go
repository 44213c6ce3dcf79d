package apiclient

import (
	"github.com/rs/zerolog/log"
)

// NetworkErrorMessage replaces transport details when a network error is shown.
const NetworkErrorMessage = "Network error. Please check your connection."

// Notice is a failure worth showing to the user.
type Notice struct {
	Kind    Kind
	Status  int
	Message string
}

// NotifyFunc displays a Notice (a toast, a CLI line, ...).
type NotifyFunc func(Notice)

// Reporter decides which outcomes reach the user. Session expiry is handled by
// refresh or de-authentication and never shows up.
type Reporter struct {
	notify NotifyFunc
}

// NewReporter creates a Reporter. A nil notify logs notices instead.
func NewReporter(notify NotifyFunc) *Reporter {
	if notify == nil {
		notify = LogNotice
	}
	return &Reporter{notify: notify}
}

// Report surfaces out if it is a user-visible failure and reports whether it did.
func (r *Reporter) Report(out Outcome) bool {
	notice, ok := noticeFor(out)
	if !ok {
		return false
	}
	r.notify(notice)
	return true
}

func noticeFor(out Outcome) (Notice, bool) {
	switch out.Kind {
	case KindClientError:
		if out.RefreshFailure {
			return Notice{}, false
		}
		return Notice{Kind: out.Kind, Status: out.Status, Message: out.Message}, true
	case KindServerError:
		return Notice{Kind: out.Kind, Status: out.Status, Message: out.Message}, true
	case KindNetworkError:
		return Notice{Kind: out.Kind, Message: NetworkErrorMessage}, true
	default:
		return Notice{}, false
	}
}

// LogNotice is the default NotifyFunc.
func LogNotice(n Notice) {
	log.Warn().Str("kind", n.Kind.String()).Int("status", n.Status).Msg(n.Message)
}
