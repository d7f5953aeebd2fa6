package control

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/rmaran/assetflow/internal/engine"
)

// Client talks to a running automation daemon over its control socket.
type Client struct {
	conn *jsonrpc2.Conn
}

// Dial connects to the control socket. Fails fast when no daemon is
// listening.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	var dialer net.Dialer
	dialer.Timeout = 3 * time.Second

	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to automation daemon: %w", err)
	}

	stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{})
	rpcConn := jsonrpc2.NewConn(ctx, stream, noopHandler{})

	return &Client{conn: rpcConn}, nil
}

type noopHandler struct{}

func (noopHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Status(ctx context.Context) (StatusResult, error) {
	var result StatusResult
	err := c.conn.Call(ctx, MethodStatus, nil, &result)
	return result, err
}

func (c *Client) Statistics(ctx context.Context) (engine.Snapshot, error) {
	var result engine.Snapshot
	err := c.conn.Call(ctx, MethodStatistics, nil, &result)
	return result, err
}

func (c *Client) Report(ctx context.Context, outputPath string) (string, error) {
	var result ReportResult
	err := c.conn.Call(ctx, MethodReport, ReportParams{OutputPath: outputPath}, &result)
	return result.Report, err
}

func (c *Client) AddFolder(ctx context.Context, path, category string) (bool, error) {
	var result FolderResult
	err := c.conn.Call(ctx, MethodFolderAdd, FolderParams{Path: path, Category: category}, &result)
	return result.Changed, err
}

func (c *Client) RemoveFolder(ctx context.Context, path string) (bool, error) {
	var result FolderResult
	err := c.conn.Call(ctx, MethodFolderRemove, FolderParams{Path: path}, &result)
	return result.Changed, err
}

func (c *Client) BatchImport(ctx context.Context, paths []string, destination, category string) (*engine.BatchResult, error) {
	var result engine.BatchResult
	err := c.conn.Call(ctx, MethodBatchImport, BatchParams{
		Paths:       paths,
		Destination: destination,
		Category:    category,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ResetStatistics(ctx context.Context) error {
	var result FolderResult
	return c.conn.Call(ctx, MethodStatsReset, nil, &result)
}

func (c *Client) Shutdown(ctx context.Context) error {
	var result FolderResult
	return c.conn.Call(ctx, MethodShutdown, nil, &result)
}

// SocketPath returns the default control socket location.
func SocketPath(stateDir string) string {
	return filepath.Join(stateDir, "control.sock")
}
