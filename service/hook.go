package service

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"
)

// Environment passed to the after_aggregate hook.
const (
	envHookUser     = "WERK_USER"
	envHookStart    = "WERK_START"
	envHookEnd      = "WERK_END"
	envHookSessions = "WERK_SESSIONS"
	envHookRemoved  = "WERK_REMOVED"
)

// runHook executes hooks.after_aggregate with the outcome of r in its
// environment.
func (s *Service) runHook(ctx context.Context, r *Report) error {
	hook := s.cfg.Hooks.AfterAggregate
	if hook == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(hook)
	if err != nil {
		return errHook.Wrap(err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	cmd := exec.CommandContext(ctx, name, args...)

	cmd.Env = append(
		os.Environ(),
		envHookUser+"="+r.User,
		envHookStart+"="+r.Start.Format(time.RFC3339),
		envHookEnd+"="+r.End.Format(time.RFC3339),
		envHookSessions+"="+strconv.Itoa(len(r.Sessions)),
		envHookRemoved+"="+strconv.Itoa(r.Removed),
	)

	if err := cmd.Run(); err != nil {
		return errHook.Wrap(err)
	}

	return nil
}
