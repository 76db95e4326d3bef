package cmd

import (
	"fmt"

	"github.com/roffe/golin"
	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var transportsCmd = &cobra.Command{
	Use:   "transports",
	Short: "list transports and serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Transports:")
		for _, info := range golin.ListTransports() {
			fmt.Printf("  %-10s %s (%s)\n", info.Name, info.Description, info.Capabilities.String())
		}

		ports, err := enumerator.GetDetailedPortsList()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found!")
			return nil
		}
		fmt.Println("Serial ports:")
		for _, port := range ports {
			fmt.Printf("  %s\n", port.Name)
			if port.IsUSB {
				fmt.Printf("    USB ID     %s:%s\n", port.VID, port.PID)
				fmt.Printf("    USB serial %s\n", port.SerialNumber)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transportsCmd)
}
