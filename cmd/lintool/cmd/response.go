package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var responseCmd = &cobra.Command{
	Use:   "response <id> <n>",
	Short: "poll a slave response frame",
	Long:  `Send a header and receive n data bytes and the checksum from a slave`,
	Args:  cobra.ExactArgs(2),
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

		f, err := receiveResponse(cmd.Context(), m, version, args)
		if err != nil {
			return err
		}
		log.Println(f.ColorString())
		fmt.Printf("% X\n", f.Data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(responseCmd)
}
