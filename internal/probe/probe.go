// Package probe queries an A2S server from the outside, the way a server browser would.
package probe

import (
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/olekukonko/tablewriter"
	a2sclient "github.com/woozymasta/a2s/pkg/a2s"
	"github.com/woozymasta/a2sim/internal/config"
)

// Query connects to target (host:port) via UDP and requests A2S_INFO.
func Query(target string, options config.A2S) (*a2sclient.Info, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return nil, fmt.Errorf("probe target %q: %w", target, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("probe target %q: invalid port", target)
	}

	client, err := a2sclient.New(host, port)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	client.BufferSize = options.BufferSize
	client.Timeout = options.Timeout

	return client.GetInfo()
}

// Print renders the interesting A2S_INFO fields as a table.
func Print(w io.Writer, target string, info *a2sclient.Info) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Field", "Value"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	tw.Append([]string{"Address", target})
	tw.Append([]string{"Name", info.Name})
	tw.Append([]string{"Map", info.Map})
	tw.Append([]string{"Game", info.Game})
	tw.Append([]string{"Version", info.Version})
	tw.Append([]string{"Players", fmt.Sprintf("%d/%d", info.Players, info.MaxPlayers)})
	tw.Append([]string{"OS", info.Environment.String()})

	tw.Render()
}
