package cmd

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/roffe/golin"
	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

// initMaster creates the transport and master from the persistent flags and opens it
func initMaster(cmd *cobra.Command) (*golin.Master, error) {
	pf := cmd.Flags()
	transport, err := pf.GetString(flagTransport)
	if err != nil {
		return nil, err
	}
	port, err := pf.GetString(flagPort)
	if err != nil {
		return nil, err
	}
	baudrate, err := pf.GetInt(flagBaudrate)
	if err != nil {
		return nil, err
	}
	txen, err := pf.GetString(flagTxEnable)
	if err != nil {
		return nil, err
	}
	txenInv, err := pf.GetBool(flagTxEnableInv)
	if err != nil {
		return nil, err
	}
	breakMode, err := pf.GetString(flagBreakMode)
	if err != nil {
		return nil, err
	}
	factor, err := pf.GetFloat64(flagTimeoutFactor)
	if err != nil {
		return nil, err
	}
	name, err := pf.GetString(flagName)
	if err != nil {
		return nil, err
	}
	debug, err := pf.GetBool(flagDebug)
	if err != nil {
		return nil, err
	}

	level := golin.EventTypeInfo
	if debug {
		level = golin.EventTypeDebug
	}
	logger := golin.NewStdLogger(level)

	info, err := transportInfo(transport)
	if err != nil {
		return nil, err
	}
	if info.RequiresSerialPort && port == "" {
		if port, err = selectPort(); err != nil {
			return nil, err
		}
	}

	t, err := golin.NewTransport(transport, &golin.TransportConfig{
		Debug:            debug,
		Port:             port,
		TxEnable:         txen,
		TxEnableInverted: txenInv,
		BreakMode:        breakMode,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}

	m, err := golin.New(t,
		golin.WithName(name),
		golin.WithLogger(logger),
		golin.WithTimeoutFactor(factor),
	)
	if err != nil {
		return nil, err
	}
	if err := m.Open(baudrate); err != nil {
		return nil, err
	}
	return m, nil
}

func transportInfo(name string) (golin.TransportInfo, error) {
	for _, info := range golin.ListTransports() {
		if strings.EqualFold(info.Name, name) {
			return info, nil
		}
	}
	return golin.TransportInfo{}, fmt.Errorf("%w %q, available: %s", golin.ErrUnknownTransport, name, strings.Join(golin.ListTransportNames(), ", "))
}

func getVersion(cmd *cobra.Command) (golin.Version, error) {
	v, err := cmd.Flags().GetInt(flagLinVersion)
	if err != nil {
		return 0, err
	}
	switch v {
	case 1:
		return golin.V1, nil
	case 2:
		return golin.V2, nil
	}
	return 0, fmt.Errorf("invalid LIN version %d", v)
}

func selectPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", errors.New("no serial ports found")
	}
	var items []string
	for _, port := range ports {
		if port.IsUSB {
			items = append(items, fmt.Sprintf("%s (USB %s:%s %s)", port.Name, port.VID, port.PID, port.SerialNumber))
			continue
		}
		items = append(items, port.Name)
	}
	prompt := promptui.Select{
		Label:    "Select serial port",
		HideHelp: true,
		Items:    items,
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	log.Printf("using %s", ports[i].Name)
	return ports[i].Name, nil
}

func parseID(s string) (byte, error) {
	id, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if id > 0x3F {
		return 0, fmt.Errorf("id 0x%02X out of range 0x00-0x3F", id)
	}
	return byte(id), nil
}

// parseData parses one hex byte per argument, with or without 0x prefix
func parseData(args []string) ([]byte, error) {
	if len(args) > golin.MaxDataLen {
		return nil, fmt.Errorf("%d data bytes, max %d", len(args), golin.MaxDataLen)
	}
	out := make([]byte, 0, len(args))
	for _, a := range args {
		a = strings.TrimPrefix(strings.ToLower(a), "0x")
		b, err := strconv.ParseUint(a, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid data byte %q: %w", a, err)
		}
		out = append(out, byte(b))
	}
	return out, nil
}
