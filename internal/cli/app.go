package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/auth"
	"github.com/BuzzLyutic/taskpad/internal/client"
	"github.com/BuzzLyutic/taskpad/internal/license"
	"github.com/BuzzLyutic/taskpad/internal/notify"
	"github.com/BuzzLyutic/taskpad/internal/optimistic"
	"github.com/BuzzLyutic/taskpad/internal/session"
	"github.com/BuzzLyutic/taskpad/internal/statefile"
	"github.com/BuzzLyutic/taskpad/internal/view"
	"github.com/BuzzLyutic/taskpad/internal/worker"
)

var (
	errNotSignedIn  = errors.New("not signed in: run `taskpad signin --with-token <token>` or set TASKPAD_TOKEN")
	errNotActivated = errors.New("taskpad is not activated: run `taskpad license activate <key>`")
)

type sessionState struct {
	Token string `yaml:"token"`
}

// app is the per-invocation wiring shared by commands.
type app struct {
	opts    *RootOptions
	out     io.Writer
	errOut  io.Writer
	logger  *zap.Logger
	tokens  *auth.TokenManager
	session *session.Manager
	client  *client.Client
	pool    *worker.Pool
	events  *notify.Recorder
}

func newApp(cmd *cobra.Command, opts *RootOptions) (*app, error) {
	logger := zap.NewNop()
	if opts.Verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		logger = l
	}

	cfg := opts.Config
	tokens := auth.NewTokenManager(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TokenTTL: cfg.TokenTTL})
	sess := session.NewManager(tokens, cfg.SignInURL, logger)

	a := &app{
		opts:    opts,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		logger:  logger,
		tokens:  tokens,
		session: sess,
		events:  notify.NewRecorder(),
	}
	a.client = client.New(opts.Server, sess.Token, client.WithLogger(logger))
	return a, nil
}

// savedToken is the --token flag, else the token stored by signin.
func (a *app) savedToken() (string, error) {
	if a.opts.Token != "" {
		return a.opts.Token, nil
	}
	var st sessionState
	if _, err := statefile.Load(a.opts.Config.SessionFile, &st); err != nil {
		return "", err
	}
	return st.Token, nil
}

func (a *app) resolveSession() error {
	token, err := a.savedToken()
	if err != nil {
		return err
	}
	if err := a.session.Resolve(token); err != nil {
		return fmt.Errorf("saved session is no longer valid: %w", err)
	}
	if !a.session.State().Authenticated {
		return errNotSignedIn
	}
	return nil
}

func (a *app) gate() *license.Gate {
	return license.NewGate(a.opts.Config.LicenseKey, license.NewFileStore(a.opts.Config.LicenseFile), a.logger)
}

// start prepares a data command: license check, session, worker pool.
func (a *app) start(ctx context.Context) error {
	if !a.gate().Activated() {
		return errNotActivated
	}
	if err := a.resolveSession(); err != nil {
		return err
	}
	a.pool = worker.NewPool(a.logger, a.opts.Config.WorkerCount, 64)
	a.pool.Start(ctx)
	return nil
}

func (a *app) stop() {
	if a.pool != nil {
		a.pool.Stop()
	}
}

func (a *app) storeOptions() []optimistic.Option {
	return []optimistic.Option{
		optimistic.WithDispatcher(a.pool),
		optimistic.WithNotifier(notify.Multi{a.events, notify.NewLog(a.logger)}),
		optimistic.WithLogger(a.logger),
	}
}

// tasks returns a loaded task view bound to the session.
func (a *app) tasks(ctx context.Context) (*view.TasksView, func()) {
	store := view.NewTaskStore(client.Tasks(a.client), a.storeOptions()...)
	unbind := store.Bind(ctx, a.session)
	store.Wait()
	return view.NewTasksView(store), unbind
}

func (a *app) notes(ctx context.Context) (*view.NotesView, func()) {
	store := view.NewNoteStore(client.Notes(a.client), a.storeOptions()...)
	unbind := store.Bind(ctx, a.session)
	store.Wait()
	return view.NewNotesView(store), unbind
}

// report prints collected notifications to stderr and turns any error
// notification into ErrFailed.
func (a *app) report() error {
	events := a.events.Drain()
	if err := view.RenderNotifications(a.errOut, events); err != nil {
		return err
	}
	for _, e := range events {
		if e.Level == notify.LevelError {
			return ErrFailed
		}
	}
	return nil
}

func (a *app) json() bool { return a.opts.Format == "json" }

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
