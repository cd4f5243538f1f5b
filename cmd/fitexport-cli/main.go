package main

import (
	"log/slog"

	"fitexport/cmd/fitexport-cli/commands"
	"fitexport/lib/telemetry"
	"fitexport/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "fitexport-cli")
	if err != nil {
		slog.Debug("telemetry is not configured", "err", err)
	} else {
		defer tel.Shutdown(ctx)
		telemetry.InstrumentPerfStats(ctx)
	}

	commands.ExecuteContext(ctx)
}
