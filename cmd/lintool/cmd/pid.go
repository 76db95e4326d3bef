package cmd

import (
	"fmt"

	"github.com/roffe/golin"
	"github.com/spf13/cobra"
)

var pidCmd = &cobra.Command{
	Use:   "pid [id]",
	Short: "print protected identifiers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("0x%02X -> 0x%02X\n", id, golin.ProtectedID(id))
			return nil
		}
		for id := byte(0); id <= 0x3F; id++ {
			fmt.Printf("0x%02X: 0x%02X", id, golin.ProtectedID(id))
			if id%8 == 7 {
				fmt.Println()
			} else {
				fmt.Print("  ")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pidCmd)
}
