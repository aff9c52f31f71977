/*Monthly bank statement analysis.*/
package main

import (
	_ "time/tzdata"

	"github.com/alecthomas/kong"
)

// globals holds options shared by every command
type globals struct {
	Config   string `help:"YAML file overlaid on the environment configuration."`
	LogLevel string `name:"log-level" help:"Override LOG_LEVEL (debug, info, warn, error)."`
}

// cli commands / args available
var cli struct {
	Globals globals `embed:""`

	Analyze  analyzeCmd  `cmd:"" help:"Analyze the monthly statements and write the yearly roll-up."`
	Schedule scheduleCmd `cmd:"" help:"Re-run analyze on a cron schedule until interrupted."`
	Format   formatCmd   `cmd:"" help:"Print amounts in Indian currency format."`
	Events   eventsCmd   `cmd:"" help:"Log month processed events from the AMQP queue."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("moneyanalysis"),
		kong.Description("Bank statement analysis: classification, cash flow, summaries and reports."),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
