package cmd

import (
	"context"
	"log"

	"github.com/roffe/golin"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "lintool",
	Short:        "LIN bus master tool",
	Long:         `Send master requests and poll slave responses on a LIN bus through a serial transceiver`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

const (
	flagPort          = "port"
	flagBaudrate      = "baudrate"
	flagTransport     = "transport"
	flagTxEnable      = "txen"
	flagTxEnableInv   = "txen-inverted"
	flagBreakMode     = "break-mode"
	flagLinVersion    = "lin-version"
	flagTimeoutFactor = "timeout-factor"
	flagName          = "name"
	flagDebug         = "debug"
)

func init() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	pf := rootCmd.PersistentFlags()
	pf.StringP(flagPort, "p", "", "com-port, empty = select from available")
	pf.IntP(flagBaudrate, "b", golin.DefaultBaudrate, "baudrate")
	pf.StringP(flagTransport, "t", "serial", "what transport to use")
	pf.String(flagTxEnable, golin.TxEnableNone, "transmit enable line of the transceiver, rts or dtr")
	pf.Bool(flagTxEnableInv, false, "transmit enable line is active low")
	pf.String(flagBreakMode, golin.BreakModeNative, "break generation, native or halfbaud")
	pf.IntP(flagLinVersion, "l", 2, "LIN version, 1 = classic checksum, 2 = enhanced checksum")
	pf.Float64(flagTimeoutFactor, golin.DefaultTimeoutFactor, "frame timeout as multiple of the nominal frame time, raise to 5 or more for USB serial adapters (up to 16ms latency)")
	pf.String(flagName, golin.DefaultName, "node name used in log output")
	pf.BoolP(flagDebug, "d", false, "debug mode")
}
