// Package shield gates access to distracting apps during a session.
//
// Enforcement is delegated: the controller decides when the shield engages,
// an Enforcer carries it out. The stock ExecEnforcer runs user-configured
// block/unblock commands; without configured commands the shield is a state
// flag only.
package shield

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ferventapp/fervent/internal/models"
	"github.com/ferventapp/fervent/internal/store"
)

// ErrNotAuthorized is returned when the shield is engaged while disabled in
// settings.
var ErrNotAuthorized = fmt.Errorf("shield is not enabled in settings")

// Enforcer applies and lifts the actual block.
type Enforcer interface {
	Block(ctx context.Context, apps []string) error
	Unblock(ctx context.Context) error
}

// Noop is an Enforcer that does nothing. Used when no block commands are
// configured.
type Noop struct{}

func (Noop) Block(context.Context, []string) error { return nil }
func (Noop) Unblock(context.Context) error         { return nil }

// ExecEnforcer shells out to user-configured commands. The app list is
// appended to the block command as arguments.
type ExecEnforcer struct {
	BlockCmd   string
	UnblockCmd string
}

func (e *ExecEnforcer) Block(ctx context.Context, apps []string) error {
	if e.BlockCmd == "" {
		return nil
	}
	cmd := e.BlockCmd
	if len(apps) > 0 {
		cmd += " " + strings.Join(apps, " ")
	}
	return runShell(ctx, cmd)
}

func (e *ExecEnforcer) Unblock(ctx context.Context) error {
	if e.UnblockCmd == "" {
		return nil
	}
	return runShell(ctx, e.UnblockCmd)
}

func runShell(ctx context.Context, command string) error {
	out, err := exec.CommandContext(ctx, "sh", "-c", command).CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %q: %s: %w", command, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Controller owns shield state: the boolean authorization gate from
// settings, the persisted app selection, and engage/release transitions.
type Controller struct {
	store    store.Store
	enforcer Enforcer
	engaged  bool
}

// NewController creates a shield controller.
func NewController(s store.Store, e Enforcer) *Controller {
	if e == nil {
		e = Noop{}
	}
	return &Controller{store: s, enforcer: e}
}

// Engaged reports whether the shield is currently up.
func (c *Controller) Engaged() bool { return c.engaged }

// Engage raises the shield for the given apps. Fails with ErrNotAuthorized
// when the shield is disabled in settings; the session proceeds without it.
func (c *Controller) Engage(ctx context.Context, apps []string) error {
	settings, err := c.store.Settings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !settings.ShieldEnabled {
		return ErrNotAuthorized
	}

	if err := c.enforcer.Block(ctx, apps); err != nil {
		return fmt.Errorf("engage shield: %w", err)
	}
	c.engaged = true
	return nil
}

// Release lowers the shield.
func (c *Controller) Release(ctx context.Context) error {
	if err := c.enforcer.Unblock(ctx); err != nil {
		return fmt.Errorf("release shield: %w", err)
	}
	c.engaged = false
	return nil
}

// EmergencyRelease force-clears the shield regardless of prior state or
// errors. Safety net against a stuck block: called at process exit and by
// next-launch recovery.
func (c *Controller) EmergencyRelease(ctx context.Context) {
	_ = c.enforcer.Unblock(ctx)
	c.engaged = false
}

// SaveSelection persists the chosen app identifiers into the settings blob.
func (c *Controller) SaveSelection(ctx context.Context, apps []string) error {
	settings, err := c.store.Settings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	blob, err := json.Marshal(apps)
	if err != nil {
		return fmt.Errorf("encode app selection: %w", err)
	}
	settings.AppSelection = blob

	if err := c.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Selection returns the persisted app identifiers. An unreadable blob
// degrades to an empty selection.
func (c *Controller) Selection(ctx context.Context) ([]string, error) {
	settings, err := c.store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return DecodeSelection(settings), nil
}

// DecodeSelection extracts the app list from a settings record.
func DecodeSelection(settings *models.Settings) []string {
	if len(settings.AppSelection) == 0 {
		return nil
	}
	var apps []string
	if err := json.Unmarshal(settings.AppSelection, &apps); err != nil {
		return nil
	}
	return apps
}
