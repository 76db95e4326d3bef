package cmd

import (
	"log"

	"github.com/roffe/golin"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:   "request <id> [data bytes...]",
	Short: "send a master request frame",
	Long:  `Send break, sync, protected id, up to 8 hex data bytes and the checksum, and verify the echo`,
	Args:  cobra.RangeArgs(1, 1+golin.MaxDataLen),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := getVersion(cmd)
		if err != nil {
			return err
		}
		m, err := initMaster(cmd)
		if err != nil {
			return err
		}
		defer m.Close()

		f, err := sendRequest(cmd.Context(), m, version, args)
		if err != nil {
			return err
		}
		log.Println(f.ColorString())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(requestCmd)
}
