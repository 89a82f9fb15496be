package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// OutputRouterHook writes user entries (log_type=user) to one writer and
// everything else to another, each with its own formatter.
type OutputRouterHook struct {
	user sink
	op   sink
	mu   sync.Mutex
}

type sink struct {
	w   io.Writer
	fmt logrus.Formatter
}

// NewOutputRouterHook creates a router writing user entries to userW and
// operational entries to opW.
func NewOutputRouterHook(userW, opW io.Writer, userFmt, opFmt logrus.Formatter) *OutputRouterHook {
	return &OutputRouterHook{
		user: sink{w: userW, fmt: userFmt},
		op:   sink{w: opW, fmt: opFmt},
	}
}

func (h *OutputRouterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *OutputRouterHook) Fire(entry *logrus.Entry) error {
	out := h.op
	if logType, _ := entry.Data["log_type"].(string); logType == string(UserLog) {
		out = h.user
		if emoji, _ := entry.Data["emoji"].(string); emoji != "" {
			entry.Message = emoji + " " + entry.Message
		}
	}

	line, err := out.fmt.Format(entry)
	if err != nil {
		return err
	}

	// Spawned request goroutines log concurrently
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = out.w.Write(line)
	return err
}
