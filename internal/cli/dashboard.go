package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/client"
	"github.com/BuzzLyutic/taskpad/internal/notify"
	"github.com/BuzzLyutic/taskpad/internal/view"
)

// Shown when the dashboard cannot reach the server.
const statsFailedMessage = "Failed to load dashboard"

type dashboardOutput struct {
	Greeting       string     `json:"greeting"`
	Name           string     `json:"name,omitempty"`
	Stats          view.Stats `json:"stats"`
	CompletionRate int        `json:"completion_rate"`
}

func NewDashboardCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show task and note statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, root)
		},
	}
}

func runDashboard(cmd *cobra.Command, root *RootOptions) error {
	ctx := cmd.Context()
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	if !a.gate().Activated() {
		return errNotActivated
	}
	if err := a.resolveSession(); err != nil {
		return err
	}

	st := a.session.State()
	out := dashboardOutput{Greeting: view.Greeting(time.Now())}
	if st.User != nil {
		out.Name = st.User.DisplayName
	}

	d := view.NewDashboard(client.Tasks(a.client), client.Notes(a.client))
	stats, statsErr := d.Stats(ctx, st.OwnerID())
	if statsErr != nil {
		a.logger.Debug("dashboard stats failed", zap.Error(statsErr))
		notify.Error(a.events, statsFailedMessage)
	}
	out.Stats = stats
	out.CompletionRate = stats.CompletionRate()

	if a.json() {
		if err := a.printJSON(out); err != nil {
			return err
		}
	} else if err := view.RenderDashboard(a.out, out.Greeting, out.Name, stats); err != nil {
		return err
	}
	return a.report()
}
