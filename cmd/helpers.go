package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/api"
	"github.com/maxkimambo/taskboard/internal/client"
	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/scheduler"
	"github.com/maxkimambo/taskboard/internal/taskstore"
	"github.com/maxkimambo/taskboard/internal/utils"
	"github.com/maxkimambo/taskboard/internal/validation"
)

// session runs one client command: a scheduler loop, the HTTP client and the
// optimistic task store, with every reported failure collected.
type session struct {
	loop   *scheduler.Loop
	client *client.Client
	store  *taskstore.Store
	failed []error
}

func newSession(cmd *cobra.Command) *session {
	s := &session{
		loop:   scheduler.NewLoop(cmd.Context()),
		client: client.New(cfg.Client),
	}
	s.store = taskstore.New(s.client, s.loop, taskstore.WithReporter(func(err error) {
		s.failed = append(s.failed, err)
	}))
	return s
}

// load fetches the server's list into the store.
func (s *session) load() error {
	s.loop.Do(s.store.Load)
	return s.settle()
}

// run applies action on the loop, waits for its request and any
// reconciliation, and returns the first failure.
func (s *session) run(action func(store *taskstore.Store) error) error {
	var err error
	s.loop.Do(func() { err = action(s.store) })
	if err != nil {
		return err
	}
	return s.settle()
}

func (s *session) settle() error {
	s.loop.Wait()

	var failed []error
	s.loop.Do(func() {
		failed = s.failed
		s.failed = nil
	})
	if len(failed) == 0 {
		return nil
	}
	for _, err := range failed[1:] {
		logger.Op.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Debug("Additional failure")
	}
	return failed[0]
}

func (s *session) close() {
	s.loop.Close()
}

// taskAt loads the list and resolves a 1-based task number.
func (s *session) taskAt(raw, operation string) (int, api.Task, error) {
	index, err := validation.ParseDisplayNumber(raw, operation)
	if err != nil {
		return 0, api.Task{}, err
	}
	if err := s.load(); err != nil {
		return 0, api.Task{}, err
	}
	tasks := s.store.Snapshot()
	if err := validation.ValidateIndex(index, len(tasks), operation); err != nil {
		return 0, api.Task{}, err
	}
	return index, tasks[index], nil
}

// printError renders err for the terminal, with context and
// troubleshooting steps when it carries them. With --json the box is
// replaced by plain text so log collectors see no border characters.
func printError(cmd *cobra.Command, err error) {
	if jsonLogs {
		fmt.Fprint(cmd.ErrOrStderr(), taskerrors.FormatForCLI(err))
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), utils.ErrorBox(err))
}

// Exit codes returned by ExitCode.
const (
	ExitSuccess   = 0
	ExitUserError = 1
	ExitConfig    = 2
	ExitBackend   = 3
)

// ExitCode maps the error returned by Execute to the process exit code.
// Errors that are not TaskErrors come from argument and flag parsing, so
// they count as user errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if taskerrors.IsCategory(err, taskerrors.ErrorCategoryConfiguration) {
		return ExitConfig
	}
	if _, ok := taskerrors.As(err); !ok || taskerrors.IsUserError(err) {
		return ExitUserError
	}
	return ExitBackend
}
