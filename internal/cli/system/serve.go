package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/prosper/internal/api"
	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/logger"
	"github.com/julianstephens/prosper/internal/tui"
)

type ServeCmd struct {
	Addr string `help:"Address to listen on (default from PROSPER_API_ADDR)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.APIAddr
	}
	if ctx.Degraded() {
		ctx.Println("⚠️  Cloud store unreachable; serving the local store.")
	}
	logger.Verbose()
	ctx.Printf("Serving prosper API on http://%s (Ctrl+C to stop)\n", addr)
	return api.New(ctx.Tracker, addr).Run(ctx.Ctx)
}

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.New(ctx.Ctx, ctx.Tracker), tea.WithAltScreen(), tea.WithContext(ctx.Ctx))
	_, err := p.Run()
	return err
}
